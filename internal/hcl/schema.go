package hcl

import "github.com/zclconf/go-cty/cty"

// fileRoot decodes every top-level block a file may contain. Anything else
// is rejected by the decoder.
type fileRoot struct {
	Log        *logBlock        `hcl:"log,block"`
	Bridge     *bridgeBlock     `hcl:"bridge,block"`
	Server     *serverBlock     `hcl:"server,block"`
	SceneStore *sceneStoreBlock `hcl:"scene_store,block"`
	Macros     []*macroBlock    `hcl:"macro,block"`
}

type logBlock struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

type bridgeBlock struct {
	URL                string `hcl:"url,optional"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify *bool  `hcl:"insecure_skip_verify,optional"`
	ExecuteEvent       string `hcl:"execute_event,optional"`
	ResultEvent        string `hcl:"result_event,optional"`
	// Durations accept "30s" style strings or a number of seconds.
	TaskTimeout    cty.Value `hcl:"task_timeout,optional"`
	ConnectTimeout cty.Value `hcl:"connect_timeout,optional"`
}

type serverBlock struct {
	Listen string `hcl:"listen,optional"`
}

type sceneStoreBlock struct {
	Driver string `hcl:"driver"`
	Dir    string `hcl:"dir,optional"`
	DSN    string `hcl:"dsn,optional"`
}

type macroBlock struct {
	Name        string `hcl:"name,label"`
	Runtime     string `hcl:"runtime,optional"`
	Code        string `hcl:"code"`
	Description string `hcl:"description,optional"`
}
