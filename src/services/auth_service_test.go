package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finax-server/src/apperr"
	"finax-server/src/auth"
	"finax-server/src/models"
)

func TestRegisterNormalizesEmailAndSeedsCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.register(t, "  Ana ", " Ana@X.com ", "abcdef")
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@x.com", user.Email)
	assert.NotEqual(t, "abcdef", user.PasswordHash)

	categories, err := env.ledger.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, categories, len(defaultCategories))
	for _, c := range categories {
		assert.Equal(t, user.ID, c.UserID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@x.com", "abcdef")

	_, err := env.auth.Register(context.Background(), models.RegisterRequest{Name: "Ana 2", Email: "ANA@x.com", Password: "abcdef"})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []models.RegisterRequest{
		{Name: "", Email: "ana@x.com", Password: "abcdef"},
		{Name: "Ana", Email: "", Password: "abcdef"},
		{Name: "Ana", Email: "ana@x.com", Password: ""},
		{Name: "Ana", Email: "not-an-email", Password: "abcdef"},
		{Name: "Ana", Email: "ana@x.com", Password: "abcde"},
	}
	for _, req := range cases {
		_, err := env.auth.Register(context.Background(), req)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%+v: got %v", req, err)
	}
}

func TestLoginIssuesAcceptedToken(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "Ana", "ana@x.com", "abcdef")

	user, token, err := env.auth.Login(context.Background(), "ANA@x.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	require.NotEmpty(t, token)

	authed, err := env.auth.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, authed.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@x.com", "abcdef")

	_, _, wrongPassword := env.auth.Login(context.Background(), "ana@x.com", "wrong!")
	_, _, unknownEmail := env.auth.Login(context.Background(), "bia@x.com", "abcdef")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.True(t, apperr.Is(wrongPassword, apperr.KindAuthentication))
	assert.True(t, apperr.Is(unknownEmail, apperr.KindAuthentication))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthenticateRejectsExpiredAndGarbage(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@x.com", "abcdef")
	_, token, err := env.auth.Login(context.Background(), "ana@x.com", "abcdef")
	require.NoError(t, err)

	_, err = env.auth.Authenticate(context.Background(), "garbage")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	env.now = env.now.Add(2 * time.Hour)
	_, err = env.auth.Authenticate(context.Background(), token)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestAuthenticateRejectsUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	token, _, err := env.tokens.Issue("ghost", 0)
	require.NoError(t, err)

	_, err = env.auth.Authenticate(context.Background(), token)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestUpdateProfileName(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "Ana", "ana@x.com", "abcdef")

	updated, err := env.auth.UpdateProfile(context.Background(), user.ID, models.UpdateProfileRequest{Name: strPtr(" Ana Maria ")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "ana@x.com", updated.Email)

	_, err = env.auth.UpdateProfile(context.Background(), user.ID, models.UpdateProfileRequest{Name: strPtr("  ")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = env.auth.UpdateProfile(context.Background(), user.ID, models.UpdateProfileRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateProfileEmail(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "Ana", "ana@x.com", "abcdef")
	env.register(t, "Bia", "bia@x.com", "abcdef")
	ctx := context.Background()

	_, err := env.auth.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{Email: strPtr("BIA@x.com")})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	_, err = env.auth.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{Email: strPtr("bad")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	same, err := env.auth.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{Email: strPtr("Ana@X.com")})
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", same.Email)

	updated, err := env.auth.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{Email: strPtr("ana.maria@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "ana.maria@x.com", updated.Email)

	_, _, err = env.auth.Login(ctx, "ana.maria@x.com", "abcdef")
	assert.NoError(t, err)
}

func TestUpdateProfilePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "Ana", "ana@x.com", "abcdef")
	ctx := context.Background()

	_, err := env.auth.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{
		CurrentPassword: strPtr("wrong!"), NewPassword: strPtr("ghijkl"),
	})
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	_, err = env.auth.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{NewPassword: strPtr("ghijkl")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = env.auth.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{
		CurrentPassword: strPtr("abcdef"), NewPassword: strPtr("123"),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, token, err := env.auth.Login(ctx, "ana@x.com", "abcdef")
	require.NoError(t, err)

	_, err = env.auth.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{
		CurrentPassword: strPtr("abcdef"), NewPassword: strPtr("ghijkl"),
	})
	require.NoError(t, err)

	_, _, err = env.auth.Login(ctx, "ana@x.com", "abcdef")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
	_, _, err = env.auth.Login(ctx, "ana@x.com", "ghijkl")
	assert.NoError(t, err)

	_, err = env.auth.Authenticate(ctx, token)
	assert.NoError(t, err, "changing the password keeps the current session")
}

func TestUpdateAvatar(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "Ana", "ana@x.com", "abcdef")

	updated, err := env.auth.UpdateAvatar(context.Background(), user.ID, "https://cdn.finax.dev/ana.png")
	require.NoError(t, err)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, "https://cdn.finax.dev/ana.png", *updated.AvatarURL)

	_, err = env.auth.UpdateAvatar(context.Background(), user.ID, "javascript:alert(1)")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestForgotPasswordUnknownEmailIssuesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@x.com", "abcdef")

	require.NoError(t, env.auth.ForgotPassword(context.Background(), "nobody@x.com"))
	require.NoError(t, env.auth.ForgotPassword(context.Background(), "not-an-email"))
	assert.Empty(t, env.notifier.resets)
}

func TestForgotPasswordSwallowsDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@x.com", "abcdef")
	env.notifier.err = errNotifier

	assert.NoError(t, env.auth.ForgotPassword(context.Background(), "ana@x.com"))
}

func TestResetPasswordFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "Ana", "ana@x.com", "abcdef")
	ctx := context.Background()

	_, session, err := env.auth.Login(ctx, "ana@x.com", "abcdef")
	require.NoError(t, err)

	require.NoError(t, env.auth.ForgotPassword(ctx, " ANA@x.com "))
	reset := env.notifier.last(t)
	assert.Equal(t, user.ID, reset.UserID)
	assert.Equal(t, env.now.Add(time.Hour), reset.ExpiresAt)

	stored, err := env.store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	assert.Equal(t, auth.HashResetToken(reset.Token), *stored.ResetTokenHash, "only the hash is stored")

	require.NoError(t, env.auth.ResetPassword(ctx, reset.Token, "newpass"))

	_, _, err = env.auth.Login(ctx, "ana@x.com", "newpass")
	assert.NoError(t, err)
	_, _, err = env.auth.Login(ctx, "ana@x.com", "abcdef")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	_, err = env.auth.Authenticate(ctx, session)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication), "sessions issued before the reset are revoked")

	err = env.auth.ResetPassword(ctx, reset.Token, "another")
	assert.True(t, apperr.Is(err, apperr.KindToken), "token is single use")
}

func TestResetPasswordNewTokenReplacesOld(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@x.com", "abcdef")
	ctx := context.Background()

	require.NoError(t, env.auth.ForgotPassword(ctx, "ana@x.com"))
	first := env.notifier.last(t)
	require.NoError(t, env.auth.ForgotPassword(ctx, "ana@x.com"))
	second := env.notifier.last(t)
	require.NotEqual(t, first.Token, second.Token)

	err := env.auth.ResetPassword(ctx, first.Token, "newpass")
	assert.True(t, apperr.Is(err, apperr.KindToken))
	assert.NoError(t, env.auth.ResetPassword(ctx, second.Token, "newpass"))
}

func TestResetPasswordExpired(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@x.com", "abcdef")
	ctx := context.Background()

	require.NoError(t, env.auth.ForgotPassword(ctx, "ana@x.com"))
	reset := env.notifier.last(t)

	env.now = env.now.Add(61 * time.Minute)
	err := env.auth.ResetPassword(ctx, reset.Token, "newpass")
	assert.True(t, apperr.Is(err, apperr.KindToken))
}

func TestResetPasswordInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.True(t, apperr.Is(env.auth.ResetPassword(ctx, "", "newpass"), apperr.KindToken))
	assert.True(t, apperr.Is(env.auth.ResetPassword(ctx, "unknown", "newpass"), apperr.KindToken))
	assert.True(t, apperr.Is(env.auth.ResetPassword(ctx, "unknown", "123"), apperr.KindValidation))
}

func TestResetPasswordConcurrentSingleSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ana", "ana@x.com", "abcdef")
	ctx := context.Background()

	require.NoError(t, env.auth.ForgotPassword(ctx, "ana@x.com"))
	reset := env.notifier.last(t)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = env.auth.ResetPassword(ctx, reset.Token, "newpass")
		}(i)
	}
	wg.Wait()

	var ok, tokenErrs int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.KindToken):
			tokenErrs++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, tokenErrs)
}
