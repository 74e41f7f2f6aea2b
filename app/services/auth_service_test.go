package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/auth"
)

func TestRegisterNormalisesAndHashes(t *testing.T) {
	svc := services.NewAuthService(store.NewMemory())

	user, err := svc.Register(context.Background(), services.RegisterInput{
		Email:     "  Jane@Example.COM ",
		Password:  "secret1",
		FirstName: " Jane ",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.NotEqual(t, "secret1", user.Password, "password must be stored hashed")
	assert.True(t, auth.CheckPassword(user.Password, "secret1"))
}

func TestRegisterValidation(t *testing.T) {
	svc := services.NewAuthService(store.NewMemory())
	ctx := context.Background()

	_, err := svc.Register(ctx, services.RegisterInput{Email: "not-an-email", Password: "secret1"})
	assert.True(t, store.IsValidation(err))

	_, err = svc.Register(ctx, services.RegisterInput{Email: "a@b.com", Password: "short"})
	assert.True(t, store.IsValidation(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := services.NewAuthService(store.NewMemory())
	ctx := context.Background()

	in := services.RegisterInput{Email: "jane@example.com", Password: "secret1"}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	// Same address with different casing is still the same account.
	in.Email = "JANE@example.com"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestLoginRoundTrip(t *testing.T) {
	svc := services.NewAuthService(store.NewMemory())
	ctx := context.Background()

	registered, err := svc.Register(ctx, services.RegisterInput{
		Email:    "jane@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "Jane@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
}

// A failed login must look identical whether the email is unknown or the
// password is wrong, so responses cannot be used to enumerate accounts.
func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := services.NewAuthService(store.NewMemory())
	ctx := context.Background()

	_, err := svc.Register(ctx, services.RegisterInput{
		Email:    "jane@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "secret1")
	_, _, wrongErr := svc.Login(ctx, "jane@example.com", "wrong-password")

	assert.ErrorIs(t, unknownErr, services.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, services.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}
