// Package services contains application services for the gophnotes client.
// This file defines the authentication service: login, register, logout,
// liveness probe, and the locally remembered session.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/cryptox"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and remember the session locally.
//   - Register: create a new user on the server.
//   - Logout: drop tokens and forget the remembered session.
//   - LastSession: the session remembered by the previous Login, if any.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (*metadata.Session, error)
	Register(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	LastSession(ctx context.Context) (*metadata.Session, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client
// and a local SQL database for session metadata.
type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

// Login derives the verifier from (password, salt), authenticates against the
// server, asks it for the caller's identity and stores username and identity
// locally.
func (a *authService) Login(ctx context.Context, userName string, password []byte) (*metadata.Session, error) {
	salt, err := a.client.GetSalt(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("get salt error: %w", err)
	}

	masterKeyCandidate := cryptox.DeriveMasterKey(password, salt)
	verifierCandidate := cryptox.MakeVerifier(masterKeyCandidate)

	if err := a.client.Login(ctx, userName, verifierCandidate); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	identity, err := a.client.Whoami(ctx)
	if err != nil {
		return nil, fmt.Errorf("whoami error: %w", err)
	}

	s := &metadata.Session{Username: userName, Identity: identity}
	if err := a.saveSession(ctx, *s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return s, nil
}

// saveSession persists username and identity in a single transaction.
func (a *authService) saveSession(ctx context.Context, s metadata.Session) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.SaveSession(ctx, metadata.NewSQLiteRepository(tx), s)
	})
}

// Register creates a new account on the server. It generates a random salt,
// derives a master key from the provided password, computes a verifier,
// and sends salt/verifier to the server.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(32)
	key := cryptox.DeriveMasterKey(password, salt)
	verifier := cryptox.MakeVerifier(key)

	if err := a.client.Register(ctx, username, salt, verifier); err != nil {
		return err
	}
	return nil
}

// Logout forgets the tokens and wipes the remembered session.
func (a *authService) Logout(ctx context.Context) error {
	a.client.Logout()
	return a.getMetadataRepo().Clear(ctx)
}

func (a *authService) LastSession(ctx context.Context) (*metadata.Session, error) {
	return metadata.LoadSession(ctx, a.getMetadataRepo())
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
