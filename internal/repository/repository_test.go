package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hackathon-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createTeam(t *testing.T, db *gorm.DB, name string, admin bool) models.Team {
	t.Helper()
	team := models.Team{
		Name:          name,
		PasswordHash:  "hash",
		IsAdmin:       admin,
		PaymentStatus: models.PaymentStatusVerified,
		Members: []models.User{
			{Name: name + " lead", Email: strings.ToLower(name) + "@example.com", Role: models.UserRoleLeader},
			{Name: name + " two", Email: strings.ToLower(name) + "2@example.com", Role: models.UserRoleMember},
		},
	}
	require.NoError(t, NewTeamRepository(db).Create(context.Background(), &team))
	return team
}

func TestTeamRepositoryCreateLinksLeader(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	team := createTeam(t, db, "Alpha", false)

	stored, err := repo.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 2)
	require.NotNil(t, stored.LeaderID)
	leader, ok := stored.Leader()
	require.True(t, ok)
	require.Equal(t, "Alpha lead", leader.Name)

	exists, err := repo.NameExists(context.Background(), "alpha")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestTeamRepositoryReplaceQualifiedResetsOthers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	alpha := createTeam(t, db, "Alpha", false)
	beta := createTeam(t, db, "Beta", false)
	require.NoError(t, repo.UpdateFields(ctx, alpha.ID, map[string]interface{}{"qualified_for_round2": true}))

	require.NoError(t, repo.ReplaceQualified(ctx, "qualified_for_round2", []uint{beta.ID}))

	storedAlpha, err := repo.GetByID(ctx, alpha.ID)
	require.NoError(t, err)
	require.False(t, storedAlpha.QualifiedForRound2)
	storedBeta, err := repo.GetByID(ctx, beta.ID)
	require.NoError(t, err)
	require.True(t, storedBeta.QualifiedForRound2)
}

func TestTeamRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()
	team := createTeam(t, db, "Gamma", false)
	require.NoError(t, db.Create(&models.Submission{TeamID: team.ID, Round: 1, Status: models.SubmissionStatusEvaluated, SubmittedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&models.Certificate{
		TeamID: team.ID, TeamName: team.Name, Achievement: models.AchievementParticipation,
		VerificationID: "gamma-cert", IssuedAt: time.Now(),
	}).Error)

	require.NoError(t, repo.Delete(ctx, team.ID))

	var users, submissions, certificates int64
	require.NoError(t, db.Model(&models.User{}).Where("team_id = ?", team.ID).Count(&users).Error)
	require.NoError(t, db.Model(&models.Submission{}).Where("team_id = ?", team.ID).Count(&submissions).Error)
	require.NoError(t, db.Model(&models.Certificate{}).Where("team_id = ?", team.ID).Count(&certificates).Error)
	require.Zero(t, users)
	require.Zero(t, submissions)
	require.Zero(t, certificates)

	_, err := NewCertificateRepository(db).GetByVerificationID(ctx, "gamma-cert")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.ErrorIs(t, repo.Delete(ctx, team.ID), gorm.ErrRecordNotFound)
}

func TestTeamRepositoryCountsExcludeAdmin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()
	createTeam(t, db, "Organizers", true)
	createTeam(t, db, "Delta", false)

	count, err := repo.CountParticipants(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	recent, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "Delta", recent[0].Name)
}

func TestSubmissionRepositoryListByRoundSkipsAdmin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	admin := createTeam(t, db, "Organizers", true)
	team := createTeam(t, db, "Epsilon", false)

	for _, teamID := range []uint{admin.ID, team.ID} {
		require.NoError(t, repo.Create(ctx, &models.Submission{TeamID: teamID, Round: 1, TotalScore: 10, Status: models.SubmissionStatusEvaluated, SubmittedAt: time.Now()}))
	}

	submissions, err := repo.ListByRound(ctx, 1)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	require.Equal(t, "Epsilon", submissions[0].Team.Name)

	exists, err := repo.Exists(ctx, team.ID, 1)
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = repo.Exists(ctx, team.ID, 2)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSubmissionRepositoryUpdateScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	team := createTeam(t, db, "Zeta", false)
	submission := models.Submission{TeamID: team.ID, Round: 2, Status: models.SubmissionStatusPending, SubmittedAt: time.Now(),
		Answers: []models.Answer{{QuestionID: 1, Answer: "x"}}}
	require.NoError(t, repo.Create(ctx, &submission))

	updated, err := repo.UpdateScore(ctx, submission.ID, 42.5, models.SubmissionStatusEvaluated)
	require.NoError(t, err)
	require.Equal(t, 42.5, updated.TotalScore)
	require.Equal(t, models.SubmissionStatusEvaluated, updated.Status)
	require.Len(t, updated.Answers, 1)

	_, err = repo.UpdateScore(ctx, 9999, 1, models.SubmissionStatusEvaluated)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSubmissionRepositoryUpdateAnswers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	team := createTeam(t, db, "Eta", false)
	submission := models.Submission{TeamID: team.ID, Round: 1, Status: models.SubmissionStatusEvaluated, TotalScore: 10, SubmittedAt: time.Now(),
		Answers: []models.Answer{{QuestionID: 3, Answer: "print(1)", Score: 10}}}
	require.NoError(t, repo.Create(ctx, &submission))

	answers := []models.Answer{{QuestionID: 3, Answer: "print(1)", Score: 10, Review: "Looks fine"}}
	require.NoError(t, repo.UpdateAnswers(ctx, submission.ID, answers))

	stored, err := repo.GetByID(ctx, submission.ID)
	require.NoError(t, err)
	require.Equal(t, "Looks fine", stored.Answers[0].Review)
	require.Equal(t, 10.0, stored.TotalScore)

	require.ErrorIs(t, repo.UpdateAnswers(ctx, 9999, answers), gorm.ErrRecordNotFound)
}

func TestQuestionRepositoryTotalPoints(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	questions := []models.Question{
		{Title: "Q1", Description: "d", Round: 1, Type: models.QuestionTypeMCQ, Points: 10, CorrectAnswer: "a"},
		{Title: "Q2", Description: "d", Round: 1, Type: models.QuestionTypeCode, Points: 25, TestCases: []models.TestCase{{Input: "1", ExpectedOutput: "1"}}},
		{Title: "Q3", Description: "d", Round: 2, Type: models.QuestionTypeAIML, Points: 40, TestCases: []models.TestCase{{Input: "1", ExpectedOutput: "1"}}},
	}
	for i := range questions {
		require.NoError(t, repo.Create(ctx, &questions[i]))
	}

	total, err := repo.TotalPoints(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 35, total)

	total, err = repo.TotalPoints(ctx, 3)
	require.NoError(t, err)
	require.Zero(t, total)

	byID, err := repo.GetByIDs(ctx, []uint{questions[1].ID, 777})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	require.Len(t, byID[questions[1].ID].TestCases, 1)
}

func TestSettingsRepositoryCreatesSingleton(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	first, err := repo.Get(ctx)
	require.NoError(t, err)
	require.False(t, first.Round1Live)

	updated, err := repo.Update(ctx, map[string]interface{}{"round1_live": true})
	require.NoError(t, err)
	require.True(t, updated.Round1Live)
	require.Equal(t, first.ID, updated.ID)

	var count int64
	require.NoError(t, db.Model(&models.Settings{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCertificateRepositoryReplaceAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCertificateRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.ReplaceAll(ctx, []models.Certificate{
		{TeamID: 1, TeamName: "A", Achievement: models.AchievementParticipation, VerificationID: "one", IssuedAt: now},
	}))
	require.NoError(t, repo.ReplaceAll(ctx, []models.Certificate{
		{TeamID: 2, TeamName: "B", Achievement: models.AchievementWinnerFirst, VerificationID: "two", IssuedAt: now},
	}))

	_, err := repo.GetByVerificationID(ctx, "one")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	certificate, err := repo.GetByVerificationID(ctx, "two")
	require.NoError(t, err)
	require.Equal(t, models.AchievementWinnerFirst, certificate.Achievement)

	mine, err := repo.ListByTeam(ctx, 2)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestActivityLogRepositoryPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: "admin", Action: "deploy_round", EntityType: "settings"}))
	}

	entries, total, err := repo.List(ctx, ActivityLogFilter{Page: 2, PageSize: 2, Action: "deploy_round"})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, entries, 1)
}
