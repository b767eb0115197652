package anubis

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/usecase"
)

const devTokenPrefix = "dev:"

// DevVerifier stands in for the identity service on local instances.
// Tokens look like "dev:<user_id>" or "dev:<user_id>:match.manage,match.moderate".
type DevVerifier struct{}

func (DevVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, devTokenPrefix) {
		return user.Principal{}, fmt.Errorf("%w: unrecognised dev token", usecase.ErrUnauthorized)
	}

	parts := strings.SplitN(strings.TrimPrefix(token, devTokenPrefix), ":", 2)
	userID := strings.TrimSpace(parts[0])
	if userID == "" {
		return user.Principal{}, fmt.Errorf("%w: dev token has no user id", usecase.ErrUnauthorized)
	}

	var permissions []string
	if len(parts) == 2 {
		permissions = strings.Split(parts[1], ",")
	}
	return user.NewPrincipal(userID, userID, capabilitiesFrom(permissions)...), nil
}
