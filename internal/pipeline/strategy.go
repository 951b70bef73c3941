package pipeline

import (
	"github.com/backmassage/rname/internal/apperr"
	"github.com/backmassage/rname/internal/config"
	"github.com/backmassage/rname/internal/naming"
)

// Warner is the logging subset NewStrategy needs.
type Warner interface {
	Warn(string, ...any)
}

// NewStrategy builds the naming strategy selected by cfg.Hash and
// cfg.Length. Invalid choices are user errors.
func NewStrategy(cfg *config.Config, log Warner) (naming.Strategy, error) {
	alg, explicit, err := naming.ParseAlgorithm(cfg.Hash)
	if err != nil {
		return nil, apperr.Userf("%w", err)
	}
	if !explicit {
		log.Warn("No hash algorithm given, using %s", alg)
	}

	if alg == naming.Random {
		tok, err := naming.NewRandomToken(cfg.Length, cfg.Uppercase)
		if err != nil {
			return nil, apperr.Userf("%w", err)
		}
		if tok.Weak() {
			log.Warn("Random names of %d characters collide easily; consider a longer --length", tok.Length)
		}
		return tok, nil
	}

	h, err := naming.NewContentHash(alg, cfg.Length, cfg.Uppercase)
	if err != nil {
		return nil, apperr.Userf("%w", err)
	}
	return h, nil
}
