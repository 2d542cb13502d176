package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dogmatiq/tether"
	"github.com/dogmatiq/tether/config"
	"github.com/dogmatiq/tether/middleware/oteltether"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.infratographer.com/x/loggingx"
	"go.infratographer.com/x/versionx"
	"go.infratographer.com/x/viperx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const appName = "tether"

// settings is the configuration of the command itself, as opposed to the
// client configuration in config.Config.
type settings struct {
	Logging loggingx.Config
	OTel    struct {
		Stdout bool
	} `mapstructure:"otel"`
}

// app holds the state shared by the commands.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *zap.SugaredLogger

	tracerProvider trace.TracerProvider
	shutdown       func(context.Context) error
}

// newRootCommand returns the tether command with all of its subcommands.
func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:          appName,
		Short:        "Sends requests to a cluster of HTTP endpoints",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is /etc/tether/tether.yaml)")
	loggingx.MustViperFlags(a.v, flags)
	config.MustViperFlags(a.v, flags)

	flags.Bool("otel-stdout", false, "write OpenTelemetry spans to stderr")
	viperx.MustBindFlag(a.v, "otel.stdout", flags.Lookup("otel-stdout"))

	versionx.RegisterCobraCommand(cmd, func() { versionx.PrintVersion(a.logger) })

	cmd.AddCommand(
		newRequestCommand(a),
		newHostsCommand(a),
		newPingCommand(a),
	)

	return cmd
}

// init reads the config file and environment variables and sets up logging
// and tracing.
func (a *app) init(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath("/etc/tether/")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(appName)
	}

	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.SetEnvPrefix(appName)
	a.v.AutomaticEnv()

	readErr := a.v.ReadInConfig()

	var s settings
	if err := a.v.Unmarshal(&s); err != nil {
		return fmt.Errorf("unable to process app config: %w", err)
	}

	a.logger = loggingx.InitLogger(appName, s.Logging)

	if readErr == nil {
		a.logger.Infow("using config file", "file", a.v.ConfigFileUsed())
	} else if a.cfgFile != "" {
		return fmt.Errorf("unable to read config file: %w", readErr)
	}

	if s.OTel.Stdout {
		exp, err := stdouttrace.New(
			stdouttrace.WithWriter(cmd.ErrOrStderr()),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("unable to initialize tracing: %w", err)
		}

		tp := tracesdk.NewTracerProvider(tracesdk.WithSyncer(exp))
		a.tracerProvider = tp
		a.shutdown = tp.Shutdown
	}

	return nil
}

// close flushes telemetry and releases resources acquired by init.
func (a *app) close(ctx context.Context) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}

	if a.shutdown != nil {
		return a.shutdown(ctx)
	}

	return nil
}

// newClient returns a client built from the client configuration.
//
// extra options are applied after those from the configuration.
func (a *app) newClient(extra ...tether.Option) (*tether.Client, error) {
	options, err := a.clientOptions()
	if err != nil {
		return nil, err
	}

	return tether.New(append(options, extra...)...)
}

// clientOptions returns the options described by the client configuration,
// including a transport factory that wraps the HTTP transport in the
// telemetry middleware.
//
// Requests are logged to the command's logger when logging is enabled.
func (a *app) clientOptions() ([]tether.Option, error) {
	cfg, err := config.Load(a.v)
	if err != nil {
		return nil, err
	}

	options, err := cfg.ClientOptions()
	if err != nil {
		return nil, err
	}

	if cfg.Log && a.logger != nil {
		options = append(options, tether.WithLogger(a.logger.Desugar().Named("requests")))
	}

	var factory tether.TransportFactory = tether.NewHTTPTransport
	if a.tracerProvider != nil {
		factory = oteltether.WithTracing(factory, a.tracerProvider)
	}
	factory = oteltether.WithMetrics(factory, otel.GetMeterProvider())

	return append(options, tether.WithTransportFactory(factory)), nil
}
