package usecase

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/user"
)

func requireCaller(caller user.Principal) error {
	if strings.TrimSpace(caller.UserID) == "" {
		return fmt.Errorf("%w: caller identity is required", ErrUnauthorized)
	}
	return nil
}

func requireManageMatch(caller user.Principal) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.CanManageMatch() {
		return fmt.Errorf("%w: %s capability required", ErrPermissionDenied, user.CapabilityManageMatch)
	}
	return nil
}

func requireModerate(caller user.Principal) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.CanModerate() {
		return fmt.Errorf("%w: %s capability required", ErrPermissionDenied, user.CapabilityModerate)
	}
	return nil
}

func callerName(caller user.Principal) string {
	if name := strings.TrimSpace(caller.DisplayName); name != "" {
		return name
	}
	return caller.UserID
}
