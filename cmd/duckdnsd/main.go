package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"duckdnsd/config"
	"duckdnsd/ddns"
	"duckdnsd/log"
	"duckdnsd/resolve"
	"duckdnsd/state"
	"duckdnsd/updater"
)

var (
	configPath = flag.StringP("config", "c", "config.toml", "path to config file")
	once       = flag.Bool("once", false, "run a single update pass and exit")
	debug      = flag.Bool("debug", false, "enable debug output")
	help       = flag.BoolP("help", "h", false, "Print help message")
)

var buildDate string

var conf config.Config

func init() {
	flag.Parse()
	if *help {
		fmt.Println(flag.CommandLine.FlagUsages())
		os.Exit(0)
	}
}

func getInitLogger() context.Context {
	var err error
	var logger *zap.Logger

	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}

	if err != nil {
		fmt.Printf("Failed creating logger: %v\n", err)
		os.Exit(1)
	}

	return log.WithLogger(context.Background(), logger)
}

func getLogger(ctx context.Context) context.Context {
	var logOption zap.Config
	if *debug {
		logOption = zap.NewDevelopmentConfig()
	} else {
		logOption = zap.NewProductionConfig()
	}

	if conf.Log.Level != nil {
		logOption.Level.SetLevel(*conf.Log.Level)
	}

	if conf.Log.Encoding != nil {
		logOption.Encoding = *conf.Log.Encoding
	}

	if conf.Log.InfoPath != nil {
		logOption.OutputPaths = *conf.Log.InfoPath
	}

	if conf.Log.ErrorPath != nil {
		logOption.ErrorOutputPaths = *conf.Log.ErrorPath
	}

	logOption.InitialFields = map[string]interface{}{
		"node": conf.Service.Name,
	}

	logger, err := logOption.Build()
	if err != nil {
		log.S(ctx).Fatalw("cannot build real logger", zap.Error(err))
	}

	return log.WithLogger(context.Background(), logger)
}

func loadConfig(ctx context.Context) {
	f, err := os.Open(*configPath)
	if err != nil {
		log.S(ctx).Fatalw("failed loading config", zap.Error(err))
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(*configPath, ".toml"):
		err = toml.NewDecoder(f).Decode(&conf)
	case strings.HasSuffix(*configPath, ".yaml") || strings.HasSuffix(*configPath, ".yml"):
		err = yaml.NewDecoder(f).Decode(&conf)
	case strings.HasSuffix(*configPath, ".json"):
		err = json.NewDecoder(f).Decode(&conf)
	default:
		err = fmt.Errorf("unrecognized config extension: %s", *configPath)
	}

	if err != nil {
		log.S(ctx).Fatalw("failed loading config", zap.Error(err))
	}
}

func main() {
	ctx := getInitLogger()

	if buildDate != "" {
		log.S(ctx).Infow("duckdnsd starting", "variant", "release", "build_date", buildDate)
	} else {
		log.S(ctx).Infow("duckdnsd starting", "variant", "debug")
	}

	loadConfig(ctx)
	conf.Normalize()

	if err := conf.Validate(); err != nil {
		log.S(ctx).Errorw("invalid configuration, refusing to start", zap.Error(err))
		os.Exit(2)
	}

	ctx = getLogger(ctx)

	resolver, err := resolve.New(ctx, conf.Lookup)
	if err != nil {
		log.S(ctx).Errorw("cannot init resolver", zap.Error(err))
		os.Exit(2)
	}

	create, ok := ddns.Providers[conf.Provider.Type]
	if !ok {
		log.S(ctx).Errorw("unknown provider type", "type", conf.Provider.Type)
		os.Exit(2)
	}

	provider, err := create(ctx, conf.Provider)
	if err != nil {
		log.S(ctx).Errorw("cannot init provider", zap.Error(err))
		os.Exit(2)
	}

	store, err := state.NewStore(conf.Service.StateDir)
	if err != nil {
		log.S(ctx).Errorw("cannot init state store", zap.Error(err))
		os.Exit(2)
	}

	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sctx)
	for _, domain := range conf.Domain {
		loop := updater.New(domain, resolver, provider, store,
			time.Duration(conf.Service.Interval), time.Duration(conf.Service.MaxBackoff))

		g.Go(func() error {
			if *once {
				return loop.RunOnce(gctx)
			}
			return loop.Run(gctx)
		})
	}

	err = g.Wait()
	stop()

	switch {
	case err == nil:
		log.S(ctx).Infow("done")
	case errors.Is(err, context.Canceled):
		log.S(ctx).Infow("shutting down on signal")
	case ddns.IsUnauthorized(err):
		log.S(ctx).Errorw("provider rejected credentials, fix the token and restart", zap.Error(err))
		os.Exit(1)
	default:
		log.S(ctx).Errorw("exiting with failure", zap.Error(err))
		os.Exit(1)
	}
}
