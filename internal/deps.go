package internal

import (
	"bitwise74/user-api/config"
	"bitwise74/user-api/internal/repository"
	"bitwise74/user-api/internal/service"
	"bitwise74/user-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Argon  *security.ArgonHash
	Tokens *security.TokenIssuer
	Users  *repository.UserStore
	Ledger *repository.TokenLedger
	Auth   *service.Authenticator
}

// NewDeps wires the stores and the authenticator on top of an open database
func NewDeps(db *gorm.DB, cfg *config.Config, argon *security.ArgonHash) (*Deps, error) {
	tokens, err := security.NewTokenIssuer(&security.TokenOpts{
		Secret:    cfg.JWT.Secret,
		Algorithm: cfg.JWT.Algorithm,
		TTL:       cfg.JWT.TTL,
	})
	if err != nil {
		return nil, err
	}

	d := &Deps{
		DB:     db,
		Config: cfg,
		Argon:  argon,
		Tokens: tokens,
		Users:  repository.NewUserStore(db, argon),
		Ledger: repository.NewTokenLedger(db),
	}

	d.Auth = &service.Authenticator{
		Users:  d.Users,
		Ledger: d.Ledger,
		Tokens: tokens,
		Argon:  argon,
	}

	return d, nil
}
