package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/player"
)

// PlayerWriteStore persists player profiles.
type PlayerWriteStore interface {
	Save(ctx context.Context, p player.Player) error
}

// RegisterPlayerInput carries input for player self-registration.
type RegisterPlayerInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Grade    string
}

// RegisterPlayerDeps holds dependencies for RegisterPlayer.
type RegisterPlayerDeps struct {
	AccountStore AccountStoreForCreate
	PlayerStore  PlayerWriteStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteRegisterPlayer creates a player account and its profile in one step.
// PRE: Valid name, email, password; grade is a known value or empty
// POST: Account (role player) and Player profile created, profile ID returned
func ExecuteRegisterPlayer(ctx context.Context, input RegisterPlayerInput, deps RegisterPlayerDeps) (string, error) {
	grade := input.Grade
	if grade == "" {
		grade = player.GradeBeginner
	}

	accountID, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    input.Email,
		Password: input.Password,
		Role:     account.RolePlayer,
	}, CreateAccountDeps{
		AccountStore: deps.AccountStore,
		GenerateID:   deps.GenerateID,
		Now:          deps.Now,
	})
	if err != nil {
		return "", err
	}

	p := player.Player{
		ID:        deps.GenerateID(),
		AccountID: accountID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Grade:     grade,
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	if err := deps.PlayerStore.Save(ctx, p); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "player_registered", "player_id", p.ID, "grade", p.Grade)
	return p.ID, nil
}
