package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-hatool/pkg/config"
	"github.com/goliatone/go-hatool/pkg/hass"
	"github.com/goliatone/go-hatool/pkg/interfaces/logger"
	"github.com/goliatone/go-hatool/pkg/secrets"
	"github.com/google/uuid"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// CLI defines the command-line interface parsed by Kong. Exactly one of
// --entity, --store and --forget is required.
type CLI struct {
	Verbose bool     `short:"v" help:"Show debug log."`
	Config  string   `short:"c" default:"${config}" help:"Path to config file with hostname/port."`
	State   argValue `short:"s" placeholder:"STATE" help:"State to send to entity. (e.g. \"on\", \"off\")"`
	Entity  argValue `short:"e" placeholder:"ENTITY" xor:"action" required:"" help:"Entity to get/set state on."`
	Store   bool     `xor:"action" required:"" help:"Read a bearer token from stdin and store it for the configured server."`
	Forget  bool     `xor:"action" required:"" help:"Remove the stored bearer token for the configured server."`
}

// SecretsOpener returns the provider selected by cfg. The closer may be nil.
type SecretsOpener func(ctx context.Context, cfg config.Config) (secrets.Provider, io.Closer, error)

// Dependencies holds the injectable collaborators of a run.
type Dependencies struct {
	// Out receives log lines and usage errors. Defaults to stderr.
	Out io.Writer
	// In supplies the token for --store. Defaults to stdin.
	In io.Reader
	// Getenv resolves environment variables. Defaults to os.Getenv.
	Getenv func(string) string
	// OpenSecrets overrides secret backend selection.
	OpenSecrets SecretsOpener
	// HTTPClient overrides the client built from the TLS/timeout config.
	HTTPClient *http.Client
	// Exit is called by the parser for --help. Defaults to os.Exit.
	Exit func(int)
}

// Run parses args, resolves the bearer token and performs one state request.
// API failures are logged and still yield ExitOK; so does a missing token.
// With --store or --forget it manages the stored token and makes no request.
func Run(ctx context.Context, args []string, deps Dependencies) int {
	deps = deps.withDefaults()

	cli := CLI{}
	exited := -1
	parser, err := kong.New(&cli,
		kong.Name("hatool"),
		kong.Description("Simple Home Assistant API tool."),
		kong.Vars{"config": config.DefaultPath},
		kong.Writers(deps.Out, deps.Out),
		kong.Exit(func(code int) {
			exited = code
			deps.Exit(code)
		}),
	)
	if err != nil {
		fmt.Fprintf(deps.Out, "hatool: %v\n", err)
		return ExitError
	}
	_, err = parser.Parse(args)
	if exited >= 0 {
		// --help printed usage and an injected Exit returned.
		return exited
	}
	if err != nil {
		fmt.Fprintf(deps.Out, "hatool: error: %v\n", err)
		return ExitUsage
	}

	base := logger.New(deps.Out, cli.Verbose).With(logger.Field{Key: "run_id", Value: uuid.NewString()})
	log := logger.Component(base, "main")

	log.Debug("opening config file", logger.Field{Key: "path", Value: cli.Config})
	cfg, err := config.LoadFile(cli.Config)
	if err != nil {
		log.Error("load config", logger.Field{Key: "error", Value: err})
		return ExitError
	}

	opener := deps.OpenSecrets
	if opener == nil {
		opener = defaultSecretsOpener(deps.Getenv)
	}
	provider, closer, err := opener(ctx, cfg)
	if err != nil {
		log.Error("open secret backend", logger.Field{Key: "backend", Value: cfg.Secrets.Backend}, logger.Field{Key: "error", Value: err})
		return ExitError
	}
	if closer != nil {
		defer closer.Close()
	}

	switch {
	case cli.Store:
		return storeCredential(deps.In, provider, cfg, logger.Component(base, "secrets"))
	case cli.Forget:
		return forgetCredential(provider, cfg, logger.Component(base, "secrets"))
	}

	token, err := resolveToken(provider, cfg, logger.Component(base, "secrets"))
	if err != nil {
		if secrets.IsNotFound(err) {
			return ExitOK
		}
		log.Error("look up credential", logger.Field{Key: "error", Value: err})
		return ExitError
	}

	client, err := newClient(cfg, token, deps.HTTPClient, logger.Component(base, "hass"))
	if err != nil {
		log.Error("configure client", logger.Field{Key: "error", Value: err})
		return ExitError
	}

	var payload map[string]string
	if cli.State != "" {
		payload = map[string]string{"state": cli.State.String()}
	}
	response, err := client.Request(ctx, cli.Entity.String(), payload)
	if err != nil {
		log.Error("error accessing HA", logger.Field{Key: "error", Value: err})
		return ExitOK
	}

	if !isEmpty(response) {
		log.Info("response", logger.Field{Key: "body", Value: render(response)})
	}
	return ExitOK
}

func resolveToken(provider secrets.Provider, cfg config.Config, log logger.Logger) (string, error) {
	ref := secrets.BearerReference(cfg.Host, cfg.Port)
	log.Debug("looking up password", logger.Field{Key: "label", Value: ref.Label()})

	token, err := secrets.LookupBearer(provider, cfg.Host, cfg.Port)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			log.Debug("no credential stored, nothing to do", logger.Field{Key: "label", Value: ref.Label()})
		}
		return "", err
	}
	log.Debug("credential resolved", logger.Field{Key: "credential", Value: secrets.MaskString(token)})
	return token, nil
}

func newClient(cfg config.Config, token string, httpClient *http.Client, log logger.Logger) (*hass.Client, error) {
	opts := []hass.Option{
		hass.WithLogger(log),
		hass.WithTimeout(cfg.Timeout()),
		hass.WithHTTPClient(httpClient),
	}
	if httpClient == nil {
		tlsCfg, err := tlsConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hass.WithTLSConfig(tlsCfg))
	}
	return hass.New(cfg.Host, cfg.Port, token, opts...), nil
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Out == nil {
		d.Out = os.Stderr
	}
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	if d.Exit == nil {
		d.Exit = os.Exit
	}
	return d
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	default:
		return false
	}
}

func render(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}
