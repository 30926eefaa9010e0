package config

import "github.com/spf13/pflag"

const confFlag = "conf"

// Load reads the config file, the env and then the command-line flags,
// each overriding the previous one.
func Load(args []string) (conf Signal, path string, err error) {
	pre := pflag.NewFlagSet("signal", pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	custom := pre.StringP(confFlag, "c", "", "")
	_ = pre.Parse(args)

	if path, err = LoadConfig(&conf, *custom); err != nil {
		return
	}

	fs := pflag.NewFlagSet("signal", pflag.ContinueOnError)
	fs.StringP(confFlag, "c", "", "Set custom configuration file path")
	conf.AddFlags(fs)
	err = fs.Parse(args)
	return
}

func (c *Signal) AddFlags(fs *pflag.FlagSet) *Signal {
	fs.BoolVarP(&c.Debug, "debug", "d", c.Debug, "Enable debug logs")
	fs.StringVar(&c.Namespace, "namespace", c.Namespace, "Signaling routes prefix")
	c.Server.AddFlags(fs)
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	fs.StringVar(&c.Redis.Addr, "redis", c.Redis.Addr, "Redis address for the room events (host:port)")
	return c
}

func (s *Server) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.Address, "address", s.Address, "HTTP server address (host:port)")
	fs.StringVar(&s.Tls.Address, "httpsAddress", s.Tls.Address, "HTTPS server address (host:port)")
	fs.StringVar(&s.Tls.HttpsKey, "httpsKey", s.Tls.HttpsKey, "HTTPS key")
	fs.StringVar(&s.Tls.HttpsCert, "httpsCert", s.Tls.HttpsCert, "HTTPS chain")
}
