package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudflare/tableflip"

	"github.com/aehttpd/aehttpd/conf"
	"github.com/aehttpd/aehttpd/contrib/config"
	"github.com/aehttpd/aehttpd/contrib/config/provider/file"
	"github.com/aehttpd/aehttpd/contrib/log"
	"github.com/aehttpd/aehttpd/internal/admin"
	"github.com/aehttpd/aehttpd/internal/handler"
	"github.com/aehttpd/aehttpd/internal/router"
	"github.com/aehttpd/aehttpd/internal/server"
)

var (
	flagConf    string
	flagVerbose bool

	// Version is set at build time via -ldflags.
	Version string = "no-set"
)

func init() {
	flag.StringVar(&flagConf, "c", "config.yaml", "config file path")
	flag.BoolVar(&flagVerbose, "v", false, "enable verbose log")
}

func main() {
	flag.Parse()

	bc := conf.Default()
	c := config.New[conf.Bootstrap](config.WithSource(file.NewSource(flagConf)))
	defer c.Close()
	if err := c.Scan(bc); err != nil {
		log.Warnf("config: using defaults, scan failed: %s", err)
	}

	if flagVerbose {
		bc.Logger.Level = "debug"
	}
	log.SetLogger(log.NewZapLogger(log.Options{
		Level:      bc.Logger.Level,
		Path:       bc.Logger.Path,
		Caller:     bc.Logger.Caller,
		MaxSize:    bc.Logger.MaxSize,
		MaxAge:     bc.Logger.MaxAge,
		MaxBackups: bc.Logger.MaxBackups,
		Compress:   bc.Logger.Compress,
	}))

	flip, err := tableflip.New(tableflip.Options{
		PIDFile:        bc.PidFile,
		UpgradeTimeout: 30 * time.Second,
	})
	if err != nil {
		log.Fatalf("tableflip: %s", err)
	}
	defer flip.Stop()

	rtr := router.New()
	rtr.Insert("/blogs", &router.Entry{Prefix: "/blogs", Handler: handler.Blog, Flags: router.ParseQuery})
	rtr.Insert("/", &router.Entry{Prefix: "/", Handler: handler.Static, Flags: router.ParseIfModifiedSince})

	srv, err := server.New(bc.Server, bc.Indexer, rtr, flip)
	if err != nil {
		log.Fatalf("server: %s", err)
	}

	var adminSrv *admin.Server
	if bc.Admin.Enabled {
		adminSrv = admin.New(bc.Admin.Address, Version, srv)
		go func() {
			if err := adminSrv.Start(); err != nil {
				log.Errorf("admin sidecar: %s", err)
			}
		}()
	}

	go func() {
		if err := flip.Ready(); err != nil {
			log.Errorf("tableflip ready: %s", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigs {
			if sig == syscall.SIGHUP {
				_ = flip.Upgrade()
				continue
			}
			log.Infof("received %s, shutting down", sig)
			srv.Stop()
			if adminSrv != nil {
				_ = adminSrv.Stop(5 * time.Second)
			}
			return
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("server: %s", err)
	}
}
