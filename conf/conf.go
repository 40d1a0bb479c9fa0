package conf

import "time"

// Bootstrap is the whole of config.yaml.
type Bootstrap struct {
	Hostname string   `json:"hostname" yaml:"hostname"`
	PidFile  string   `json:"pidfile" yaml:"pidfile"`
	Logger   *Logger  `json:"logger" yaml:"logger"`
	Server   *Server  `json:"server" yaml:"server"`
	Admin    *Admin   `json:"admin" yaml:"admin"`
	Indexer  *Indexer `json:"indexer" yaml:"indexer"`
}

type Logger struct {
	Level      string `json:"level" yaml:"level"`
	Path       string `json:"path" yaml:"path"`
	Caller     bool   `json:"caller" yaml:"caller"`
	MaxSize    int    `json:"max_size" yaml:"max_size"`
	MaxAge     int    `json:"max_age" yaml:"max_age"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// Server configures the reactor pool and the document it serves.
type Server struct {
	Address             string        `json:"address" yaml:"address"`
	Port                int           `json:"port" yaml:"port"`
	Workers             int           `json:"workers" yaml:"workers"`
	DocumentRoot         string        `json:"document_root" yaml:"document_root"`
	BlogDataDir          string        `json:"blog_data_dir" yaml:"blog_data_dir"`
	TemplateDir          string        `json:"template_dir" yaml:"template_dir"`
	HousekeepingInterval time.Duration `json:"housekeeping_interval" yaml:"housekeeping_interval"`
	MaxAcceptPerWakeup   int           `json:"max_accept_per_wakeup" yaml:"max_accept_per_wakeup"`
	RequestBufferSize    int           `json:"request_buffer_size" yaml:"request_buffer_size"`
}

// Admin is the ambient observability sidecar — /metrics and the
// healthz probes. Entirely separate from the routed reactor traffic.
type Admin struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Address string `json:"address" yaml:"address"`
}

type Indexer struct {
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// Default returns a Bootstrap with every field populated to its
// baseline value, for use when config.yaml omits them.
func Default() *Bootstrap {
	return &Bootstrap{
		PidFile: "aehttpd.pid",
		Logger: &Logger{
			Level:      "info",
			MaxSize:    100,
			MaxAge:     28,
			MaxBackups: 7,
		},
		Server: &Server{
			Address:              "0.0.0.0",
			Port:                 8080,
			Workers:              4,
			DocumentRoot:         "./www",
			BlogDataDir:          "./data/blogs",
			TemplateDir:          "./tmpl",
			HousekeepingInterval: time.Second,
			MaxAcceptPerWakeup:   1000,
			RequestBufferSize:    8 * 1024,
		},
		Admin: &Admin{
			Enabled: true,
			Address: "127.0.0.1:9090",
		},
		Indexer: &Indexer{
			Interval: 10 * time.Second,
		},
	}
}
