package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/credstore"
)

// Profile driver values. An empty driver means sqlserver.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
)

// SecretSource looks up stored passwords by profile name. A missing
// password returns an empty string with no error.
type SecretSource interface {
	GetConnectionPassword(ctx context.Context, name string) (string, error)
}

// BuildConnectionString composes a driver connection string from a
// profile. When the profile carries a raw connection string, it is
// returned verbatim. Otherwise, when the password is absent or empty and
// the profile is named, the stored secret is substituted; an explicitly
// empty password is treated the same as an absent one. The secret is
// used only for the duration of this call and never cached.
func (s *Session) BuildConnectionString(ctx context.Context, cfg credstore.Profile) (string, error) {
	if cfg.UseConnectionString {
		return cfg.ConnectionString, nil
	}

	password := cfg.Password
	if password == "" && cfg.Name != "" && s.secrets != nil {
		stored, err := s.secrets.GetConnectionPassword(ctx, cfg.Name)
		if err != nil {
			return "", err
		}
		password = stored
	}

	if cfg.Driver == DriverPostgres {
		return buildPostgresURL(cfg, password), nil
	}
	return buildSQLServerString(cfg, password), nil
}

// buildSQLServerString composes the ADO-style string in fixed order:
// server (with optional ,port), optional database, credentials or
// integrated security, then the encrypt/trust flags only when they were
// explicitly set. Unset flags are omitted, not defaulted; defaulting
// happens upstream in the UI layer.
func buildSQLServerString(cfg credstore.Profile, password string) string {
	var b strings.Builder
	b.WriteString("Server=")
	b.WriteString(cfg.Server)
	if cfg.Port != "" {
		b.WriteString(",")
		b.WriteString(cfg.Port)
	}
	if cfg.Database != "" {
		b.WriteString(";Database=")
		b.WriteString(cfg.Database)
	}
	if cfg.Username != "" && password != "" {
		b.WriteString(";User Id=")
		b.WriteString(cfg.Username)
		b.WriteString(";Password=")
		b.WriteString(password)
	} else {
		b.WriteString(";Integrated Security=true")
	}
	if cfg.Encrypt != nil {
		fmt.Fprintf(&b, ";Encrypt=%t", *cfg.Encrypt)
	}
	if cfg.TrustServerCertificate != nil {
		fmt.Fprintf(&b, ";TrustServerCertificate=%t", *cfg.TrustServerCertificate)
	}
	return b.String()
}

// buildPostgresURL composes a postgres:// URL for profiles that target
// PostgreSQL. The encrypt flag maps onto sslmode; an unset flag leaves
// sslmode to the driver default.
func buildPostgresURL(cfg credstore.Profile, password string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   cfg.Server,
	}
	if cfg.Port != "" {
		u.Host = cfg.Server + ":" + cfg.Port
	}
	if cfg.Database != "" {
		u.Path = "/" + cfg.Database
	}
	if cfg.Username != "" {
		if password != "" {
			u.User = url.UserPassword(cfg.Username, password)
		} else {
			u.User = url.User(cfg.Username)
		}
	}
	if cfg.Encrypt != nil {
		q := url.Values{}
		if *cfg.Encrypt {
			q.Set("sslmode", "require")
		} else {
			q.Set("sslmode", "disable")
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}
