package config

// RawConfig is the on-disk shape shared by the TOML and YAML formats. Values
// that may be either numbers or strings are decoded as any and normalised
// during validation.
type RawConfig struct {
	Setup *RawSetup         `toml:"Setup" yaml:"Setup"`
	Apps  map[string]RawApp `toml:"Apps" yaml:"Apps"`
}

type RawSetup struct {
	MaxTime        any   `toml:"MaxTime" yaml:"MaxTime"`
	SleepTime      any   `toml:"SleepTime" yaml:"SleepTime"`
	CommandTimeout any   `toml:"CommandTimeout" yaml:"CommandTimeout"`
	Demaximise     *bool `toml:"Demaximise" yaml:"Demaximise"`
}

type RawApp struct {
	Type        string `toml:"Type" yaml:"Type"`
	Description string `toml:"Description" yaml:"Description"`
	Desktop     any    `toml:"Desktop" yaml:"Desktop"`
	PosX        any    `toml:"Pos_x" yaml:"Pos_x"`
	PosY        any    `toml:"Pos_y" yaml:"Pos_y"`
	SizeX       any    `toml:"Size_x" yaml:"Size_x"`
	SizeY       any    `toml:"Size_y" yaml:"Size_y"`
	Flags       string `toml:"Flags" yaml:"Flags"`
}

// number normalises the numeric types produced by the TOML and YAML decoders.
func number(v any) (value float64, integral bool, ok bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case uint64:
		return float64(n), true, true
	case float64:
		return n, false, true
	default:
		return 0, false, false
	}
}
