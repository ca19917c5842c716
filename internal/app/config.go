package app

import "errors"

// Config holds what an entrypoint asks the App to do. Empty log settings and
// an empty Listen fall back to the loaded configuration files.
type Config struct {
	ConfigPaths []string

	// One-shot execution.
	Macro     string
	ScenePath string
	SceneID   string
	Input     string
	Output    string
	Label     string

	List   bool
	Serve  bool
	Listen string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	modes := 0
	for _, on := range []bool{cfg.Macro != "", cfg.List, cfg.Serve} {
		if on {
			modes++
		}
	}
	if modes == 0 {
		return nil, errors.New("nothing to do: pass -macro, -list or -serve")
	}
	if modes > 1 {
		return nil, errors.New("-macro, -list and -serve are mutually exclusive")
	}
	if cfg.Macro != "" {
		if cfg.Input == "" {
			return nil, errors.New("-input is required with -macro")
		}
		if (cfg.ScenePath == "") == (cfg.SceneID == "") {
			return nil, errors.New("exactly one of -scene and -scene-id is required with -macro")
		}
	}
	return &cfg, nil
}

func (c *Config) mode() string {
	switch {
	case c.List:
		return "list"
	case c.Serve:
		return "serve"
	default:
		return "execute"
	}
}
