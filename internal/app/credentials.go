package app

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-hatool/pkg/config"
	"github.com/goliatone/go-hatool/pkg/interfaces/logger"
	"github.com/goliatone/go-hatool/pkg/secrets"
)

// storeCredential reads one line from in and stores it as the bearer token
// of the configured server, replacing any previous token.
func storeCredential(in io.Reader, provider secrets.Provider, cfg config.Config, log logger.Logger) int {
	ref := secrets.BearerReference(cfg.Host, cfg.Port)
	label := logger.Field{Key: "label", Value: ref.Label()}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		log.Error("read credential", label, logger.Field{Key: "error", Value: err})
		return ExitError
	}
	token := strings.TrimSpace(line)
	if token == "" {
		log.Error("read credential", label, logger.Field{Key: "error", Value: secrets.ErrEmptyValue})
		return ExitError
	}

	version, err := provider.Put(ref, []byte(token))
	if err != nil {
		log.Error("store credential", label, logger.Field{Key: "error", Value: err})
		return ExitError
	}
	fields := []logger.Field{label, {Key: "credential", Value: secrets.MaskString(token)}}
	if version != "" {
		fields = append(fields, logger.Field{Key: "version", Value: version})
	}
	log.Info("credential stored", fields...)

	if desc, err := provider.Describe(ref); err == nil {
		log.Debug("stored credential", logger.Field{Key: "describe", Value: desc})
	}
	return ExitOK
}

func forgetCredential(provider secrets.Provider, cfg config.Config, log logger.Logger) int {
	ref := secrets.BearerReference(cfg.Host, cfg.Port)
	if err := provider.Delete(ref); err != nil {
		log.Error("remove credential", logger.Field{Key: "label", Value: ref.Label()}, logger.Field{Key: "error", Value: err})
		return ExitError
	}
	log.Info("credential removed", logger.Field{Key: "label", Value: ref.Label()})
	return ExitOK
}
