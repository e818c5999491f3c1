package accounts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/hellojohn-accounts/internal/metrics"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/observability/logger"
)

// LinkInput is what a provider extracts from token data.
type LinkInput struct {
	Type        string
	ExternalID  string
	AuthData    map[string]any
	ProfileData map[string]any
	// RedirectTarget, when set, receives the browser after linking.
	RedirectTarget string
}

// LinkerDeps contiene las dependencias del Linker.
type LinkerDeps struct {
	Repo Repository
	// AllowedRedirectHosts restricts RedirectTarget hosts. Empty allows any.
	AllowedRedirectHosts []string
}

// Linker upserts accounts and builds the final handshake response.
type Linker struct {
	repo  Repository
	hosts map[string]struct{}
}

// NewLinker builds a Linker.
func NewLinker(d LinkerDeps) *Linker {
	l := &Linker{repo: d.Repo}
	if len(d.AllowedRedirectHosts) > 0 {
		l.hosts = make(map[string]struct{}, len(d.AllowedRedirectHosts))
		for _, h := range d.AllowedRedirectHosts {
			l.hosts[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
		}
	}
	return l
}

type linkResponse struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Created bool           `json:"created"`
	Profile map[string]any `json:"profile,omitempty"`
}

// Link stores the account and returns a redirect to the target with
// account_id and account_type appended, or a JSON body when there is no target.
func (l *Linker) Link(ctx context.Context, in LinkInput) (*protocol.Result, error) {
	if in.Type == "" || in.ExternalID == "" {
		return nil, fmt.Errorf("%w: type and external id are required", ErrInvalidInput)
	}

	var target *url.URL
	if in.RedirectTarget != "" {
		u, err := l.checkTarget(in.RedirectTarget)
		if err != nil {
			return nil, err
		}
		target = u
	}

	acct, created, err := l.repo.Upsert(ctx, &Account{
		ID:          uuid.NewString(),
		Type:        in.Type,
		ExternalID:  in.ExternalID,
		AuthData:    in.AuthData,
		ProfileData: in.ProfileData,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}
	metrics.ObserveLink(acct.Type, created)
	logger.From(ctx).Info("account linked",
		logger.Layer("accounts"),
		logger.AccountID(acct.ID),
		logger.String("type", acct.Type),
		logger.Bool("created", created),
	)

	if target != nil {
		q := target.Query()
		q.Set("account_id", acct.ID)
		q.Set("account_type", acct.Type)
		target.RawQuery = q.Encode()
		return protocol.Redirect(target.String(), http.StatusFound), nil
	}

	return protocol.JSON(http.StatusOK, linkResponse{
		ID:      acct.ID,
		Type:    acct.Type,
		Created: created,
		Profile: acct.ProfileData,
	})
}

func (l *Linker) checkTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrRedirectNotAllowed, raw)
	}
	if l.hosts != nil {
		if _, ok := l.hosts[strings.ToLower(u.Hostname())]; !ok {
			return nil, fmt.Errorf("%w: host %q", ErrRedirectNotAllowed, u.Hostname())
		}
	}
	return u, nil
}
