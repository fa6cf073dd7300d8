package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-go-api/internal/dto"
	"github.com/noah-isme/hackathon-go-api/internal/models"
	"github.com/noah-isme/hackathon-go-api/internal/repository"
)

const testJWTSecret = "test-secret"

func setupAuthService(t *testing.T) (AuthService, *HMACPaymentVerifier) {
	t.Helper()

	db := setupServiceDB(t)
	verifier := NewHMACPaymentVerifier("gateway-secret")
	svc := NewAuthService(
		repository.NewTeamRepository(db),
		repository.NewUserRepository(db),
		verifier,
		newTestValidator(),
		AuthConfig{Secret: testJWTSecret, TTL: time.Hour},
		zerolog.Nop(),
	)
	return svc, verifier
}

func registerRequest(verifier *HMACPaymentVerifier, teamName string, emails ...string) dto.RegisterRequest {
	members := make([]dto.MemberInput, 0, len(emails))
	for _, email := range emails {
		members = append(members, dto.MemberInput{Name: "Member " + email, Email: email})
	}
	return dto.RegisterRequest{
		TeamName: teamName,
		Password: "hunter2hunter2",
		Members:  members,
		Payment: dto.PaymentProof{
			OrderID:   "order_" + teamName,
			PaymentID: "pay_" + teamName,
			Signature: verifier.Sign("order_"+teamName, "pay_"+teamName),
		},
	}
}

func TestAuthServiceRegisterCreatesVerifiedTeam(t *testing.T) {
	svc, verifier := setupAuthService(t)

	response, err := svc.Register(context.Background(), registerRequest(verifier, "Byte Busters", "Lead@Example.com", "second@example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)
	require.Equal(t, int64(3600), response.ExpiresIn)
	require.Equal(t, "Byte Busters", response.Team.Name)
	require.Equal(t, models.PaymentStatusVerified, response.Team.PaymentStatus)
	require.Len(t, response.Team.Members, 2)
	require.True(t, response.Team.Members[0].IsLeader)
	require.Equal(t, "lead@example.com", response.User.Email)
	require.Equal(t, models.UserRoleLeader, response.User.Role)

	token, err := jwt.Parse(response.Token, func(*jwt.Token) (interface{}, error) { return []byte(testJWTSecret), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, float64(response.Team.ID), claims["team_id"])
	require.Equal(t, models.UserRoleLeader, claims["role"])
}

func TestAuthServiceRegisterRejectsBadSignature(t *testing.T) {
	svc, verifier := setupAuthService(t)

	req := registerRequest(verifier, "Nope", "nope@example.com")
	req.Payment.Signature = "forged"

	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, ErrPaymentVerification)
}

func TestAuthServiceRegisterRejectsDuplicates(t *testing.T) {
	svc, verifier := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest(verifier, "Alpha", "a@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest(verifier, "alpha", "b@example.com"))
	require.ErrorIs(t, err, ErrTeamNameTaken)

	_, err = svc.Register(ctx, registerRequest(verifier, "Beta", "A@example.com"))
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, registerRequest(verifier, "Gamma", "g@example.com", "g@example.com"))
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceRegisterSanitizesNames(t *testing.T) {
	svc, verifier := setupAuthService(t)

	req := registerRequest(verifier, "<b>Bold</b> Team", "bold@example.com")
	response, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "Bold Team", response.Team.Name)

	req = registerRequest(verifier, "<script>x</script>", "empty@example.com")
	_, err = svc.Register(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidRegistration)
}

func TestAuthServiceLoginAndMe(t *testing.T) {
	svc, verifier := setupAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest(verifier, "Delta", "lead@delta.io", "member@delta.io"))
	require.NoError(t, err)

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "member@delta.io", Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.Equal(t, registered.Team.ID, login.Team.ID)
	require.Equal(t, models.UserRoleMember, login.User.Role)
	require.False(t, login.User.IsLeader)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "member@delta.io", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@delta.io", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	profile, err := svc.Me(ctx, login.User.ID)
	require.NoError(t, err)
	require.Equal(t, "member@delta.io", profile.User.Email)
	require.Equal(t, "Delta", profile.Team.Name)

	_, err = svc.Me(ctx, 9999)
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestMaskEmailAddress(t *testing.T) {
	require.Equal(t, "a***e@example.com", maskEmailAddress(" Alice@Example.com "))
	require.Equal(t, "b***@example.com", maskEmailAddress("bo@example.com"))
	require.Equal(t, "***", maskEmailAddress("not-an-email"))
	require.Equal(t, "***", maskEmailAddress("@example.com"))
}
