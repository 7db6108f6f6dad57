package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/social-services/internal/api/dto"
	"github.com/spec-kit/social-services/internal/api/http/handlers"
	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/config"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/observability"
	"github.com/spec-kit/social-services/internal/service"
	"github.com/spec-kit/social-services/internal/testutil"
)

type testServer struct {
	app    *fiber.App
	store  *testutil.Store
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := testutil.NewStore()
	dispatcher := testutil.NewDispatcher()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "router-test", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	metrics := observability.NewMetrics()

	accounts := service.NewAccountService(cfg, service.AccountDependencies{
		AccountRepo:  store.Accounts(),
		ProfileRepo:  store.EmployerProfiles(),
		Transactor:   store.Transactor(),
		Dispatcher:   dispatcher,
		TokenManager: tokens,
	})
	steps := service.NewStepService(service.StepDependencies{
		StepRepo:    store.Steps(),
		SubStepRepo: store.SubSteps(),
		Transactor:  store.Transactor(),
	})
	offers := service.NewJobOfferService(service.JobOfferDependencies{
		OfferRepo:       store.JobOffers(),
		ApplicationRepo: store.Applications(),
		CVRepo:          store.CVs(),
		Transactor:      store.Transactor(),
		Dispatcher:      dispatcher,
	})
	notifications := service.NewNotificationService(dispatcher, store.Accounts(), store.Notifications(), nil, config.NotificationConfig{})
	notifications.RegisterHandlers()

	app := fiber.New(fiber.Config{Immutable: true})
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("social-services", "test", map[string]handlers.Pinger{}, metrics),
		Accounts:       handlers.NewAccountsHandler(accounts),
		Steps:          handlers.NewStepsHandler(steps),
		Jobs:           handlers.NewJobsHandler(offers),
		CVs:            handlers.NewCVHandler(service.NewCVService(store.CVs())),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Accounts()),
	})
	return &testServer{app: app, store: store, tokens: tokens}
}

func (s *testServer) token(t *testing.T, account domain.Account) string {
	t.Helper()
	token, _, err := s.tokens.GenerateToken(&account)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := s.do(t, http.MethodGet, "/no/such/route", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, env = s.do(t, http.MethodGet, "/health/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	snapshot := decode[observability.MetricsSnapshot](t, env)
	assert.NotEmpty(t, snapshot.Requests)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/auth/register/employer", "", map[string]any{
		"name": "HR", "email": "hr@acme.test", "password": "s3cret-pass", "company_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, status)
	account := decode[map[string]any](t, env)
	assert.Equal(t, "EMPLOYER", account["type"])
	assert.Equal(t, "WAITING_FOR_VERIFICATION", account["verification_status"])

	status, env = s.do(t, http.MethodPost, "/auth/register/standard", "", map[string]any{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "hr@acme.test", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, status)
	login := decode[struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}](t, env)
	require.NotEmpty(t, login.Auth.Token)

	status, env = s.do(t, http.MethodGet, "/accounts/me", login.Auth.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hr@acme.test", decode[map[string]any](t, env)["email"])

	status, _ = s.do(t, http.MethodPost, "/job/offer-create", login.Auth.Token, map[string]any{"title": "Cook"})
	assert.Equal(t, http.StatusForbidden, status, "unverified employers cannot publish")

	status, _ = s.do(t, http.MethodGet, "/accounts/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAccountVerificationFlow(t *testing.T) {
	s := newTestServer(t)
	verifier := s.store.Staff(domain.StaffGroupAccountVerification)
	waiting := s.store.AddAccount(domain.AccountTypeEmployer, domain.VerificationWaiting)
	s.store.AddAccount(domain.AccountTypeStandard, domain.VerificationVerified)

	status, env := s.do(t, http.MethodGet, "/accounts?status=WAITING_FOR_VERIFICATION", s.token(t, verifier), nil)
	require.Equal(t, http.StatusOK, status)
	listed := decode[[]map[string]any](t, env)
	require.Len(t, listed, 1)
	assert.Equal(t, waiting.ID, listed[0]["id"])

	status, _ = s.do(t, http.MethodGet, "/accounts", s.token(t, waiting), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/accounts/"+waiting.ID+"/verification", s.token(t, waiting), map[string]any{"status": "VERIFIED"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/accounts/"+waiting.ID+"/verification", s.token(t, verifier), map[string]any{"status": "VERIFIED"})
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, "/job/offer-create", s.token(t, waiting), map[string]any{"title": "Cook"})
	assert.Equal(t, http.StatusCreated, status)

	status, env = s.do(t, http.MethodPost, "/accounts/staff", s.token(t, verifier), map[string]any{
		"name": "Editor", "email": "editor@platform.test", "password": "s3cret-pass", "groups": []string{"guide_editor"},
	})
	require.Equal(t, http.StatusCreated, status)
	created := decode[map[string]any](t, env)
	assert.Equal(t, "STAFF", created["type"])
	assert.Equal(t, []any{"guide_editor"}, created["groups"])
}

func TestStepRoutes(t *testing.T) {
	s := newTestServer(t)
	editor := s.token(t, s.store.Staff(domain.StaffGroupGuideEditor))
	outsider := s.token(t, s.store.Standard())

	status, _ := s.do(t, http.MethodPost, "/steps/step/", outsider, map[string]any{"title": "Root"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodPost, "/steps/step/", "", map[string]any{"title": "Root"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := s.do(t, http.MethodPost, "/steps/step/", editor, map[string]any{"title": "Root"})
	require.Equal(t, http.StatusCreated, status)
	root := decode[map[string]any](t, env)
	rootID := root["id"].(string)

	status, env = s.do(t, http.MethodPost, "/steps/step/", editor, map[string]any{"title": "A"})
	require.Equal(t, http.StatusCreated, status)
	a := decode[map[string]any](t, env)
	assert.Equal(t, rootID, a["parent_id"])
	aID := a["id"].(string)

	var subIDs []string
	for _, title := range []string{"S1", "S2"} {
		status, env = s.do(t, http.MethodPost, "/steps/step/"+aID+"/substeps/", editor, map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, status)
		subIDs = append(subIDs, decode[map[string]any](t, env)["id"].(string))
	}

	status, env = s.do(t, http.MethodPost, "/steps/substep/"+subIDs[1]+"/move", editor, map[string]any{"order": 0})
	require.Equal(t, http.StatusOK, status)
	ordered := decode[[]map[string]any](t, env)
	assert.Equal(t, "S2", ordered[0]["title"])

	status, env = s.do(t, http.MethodGet, "/steps/step/"+aID, "", nil)
	require.Equal(t, http.StatusOK, status)
	node := decode[dto.StepResponse](t, env)
	require.Len(t, node.SubSteps, 2)
	for _, sub := range node.SubSteps {
		assert.Equal(t, aID, sub.StepID, "stored parent ids outlive the request that created them")
	}

	status, env = s.do(t, http.MethodPost, "/steps/step/"+aID+"/switch/", editor, map[string]any{"substep_1": subIDs[0], "substep_2": subIDs[1]})
	require.Equal(t, http.StatusOK, status)
	ordered = decode[[]map[string]any](t, env)
	assert.Equal(t, "S1", ordered[0]["title"])

	status, env = s.do(t, http.MethodPost, "/steps/substep/"+subIDs[1]+"/move", editor, map[string]any{"order": -1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = s.do(t, http.MethodGet, "/steps", "", nil)
	require.Equal(t, http.StatusOK, status)
	tree := decode[[]map[string]any](t, env)
	require.Len(t, tree, 1)
	assert.Len(t, tree[0]["children"], 1)

	status, _ = s.do(t, http.MethodDelete, "/steps/step/"+aID+"/", editor, nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(t, http.MethodGet, "/steps/step/"+aID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodDelete, "/steps/step/"+rootID, editor, nil)
	require.Equal(t, http.StatusNoContent, status)
	_, env = s.do(t, http.MethodGet, "/steps", "", nil)
	assert.Empty(t, decode[[]map[string]any](t, env))
}

func TestJobOfferRoutes(t *testing.T) {
	s := newTestServer(t)
	employerAccount := s.store.Employer()
	employer := s.token(t, employerAccount)
	moderator := s.token(t, s.store.Staff(domain.StaffGroupJobsModeration))
	userAccount := s.store.Standard()
	user := s.token(t, userAccount)

	status, env := s.do(t, http.MethodPost, "/job/offer-create/", employer, map[string]any{
		"title": "Cook", "salary_min": 3000, "salary_max": 4000,
	})
	require.Equal(t, http.StatusCreated, status)
	offerID := decode[map[string]any](t, env)["id"].(string)

	status, _ = s.do(t, http.MethodGet, "/job/offer/"+offerID, "", nil)
	assert.Equal(t, http.StatusNotFound, status, "unconfirmed offers are hidden from the public")
	status, _ = s.do(t, http.MethodGet, "/job/offer/"+offerID, employer, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPut, "/job/offer/"+offerID+"/", employer, map[string]any{"salary_max": 100})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error.Details, "salary_min")

	status, _ = s.do(t, http.MethodPost, "/job/admin/confirm/"+offerID, employer, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, env = s.do(t, http.MethodPost, "/job/admin/confirm/"+offerID+"/", moderator, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decode[map[string]any](t, env)["confirmed"])

	status, env = s.do(t, http.MethodGet, "/job/offers", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 1)

	status, env = s.do(t, http.MethodPost, "/cv", user, map[string]any{"name": "Main", "document_url": "https://files.example.com/cv.pdf"})
	require.Equal(t, http.StatusCreated, status)
	cvID := decode[map[string]any](t, env)["id"].(string)

	status, _ = s.do(t, http.MethodPost, "/job/offer/"+offerID+"/apply", user, map[string]any{"cv_id": cvID})
	require.Equal(t, http.StatusCreated, status)
	status, env = s.do(t, http.MethodPost, "/job/offer/"+offerID+"/apply", user, map[string]any{"cv_id": cvID})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, env = s.do(t, http.MethodGet, "/job/offer/"+offerID+"/applications", employer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 1)

	status, env = s.do(t, http.MethodGet, "/notifications", employer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 2)

	status, _ = s.do(t, http.MethodDelete, "/job/offer/"+offerID, user, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodDelete, "/job/offer/"+offerID+"/", employer, nil)
	require.Equal(t, http.StatusNoContent, status)
	status, env = s.do(t, http.MethodDelete, "/job/offer/"+offerID, employer, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	_, env = s.do(t, http.MethodGet, "/job/offers", "", nil)
	assert.Empty(t, decode[[]map[string]any](t, env))
	_, env = s.do(t, http.MethodGet, "/job/admin/offers", moderator, nil)
	assert.Empty(t, decode[[]map[string]any](t, env))

	apps, err := s.store.Applications().ListByUser(context.Background(), userAccount.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	s := newTestServer(t)
	editor := s.token(t, s.store.Staff(domain.StaffGroupGuideEditor))
	employer := s.token(t, s.store.Employer())
	user := s.token(t, s.store.Standard())

	cases := []struct {
		method string
		path   string
		token  string
	}{
		{http.MethodGet, "/job/offer/abc", ""},
		{http.MethodPut, "/job/offer/abc", employer},
		{http.MethodDelete, "/job/offer/abc", employer},
		{http.MethodGet, "/steps/step/abc", ""},
		{http.MethodDelete, "/steps/step/abc", editor},
		{http.MethodDelete, "/steps/substep/abc", editor},
		{http.MethodDelete, "/cv/abc", user},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, env := s.do(t, tc.method, tc.path, tc.token, map[string]any{})
			assert.Equal(t, http.StatusNotFound, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, "NOT_FOUND", env.Error.Code)
			assert.Equal(t, "abc", env.Error.Details["id"])
		})
	}

	status, env := s.do(t, http.MethodPost, "/steps/step/", editor, map[string]any{"title": "Root"})
	require.Equal(t, http.StatusCreated, status)
	rootID := decode[map[string]any](t, env)["id"].(string)

	status, env = s.do(t, http.MethodPost, "/steps/step/"+rootID+"/switch", editor, map[string]any{"substep_1": "abc", "substep_2": "def"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "must be a valid UUID", env.Error.Details["first"])

	status, env = s.do(t, http.MethodPost, "/job/offer-create", employer, map[string]any{"title": "Cook"})
	require.Equal(t, http.StatusCreated, status)
	offerID := decode[map[string]any](t, env)["id"].(string)

	status, env = s.do(t, http.MethodPost, "/job/offer/"+offerID+"/apply", user, map[string]any{"cv_id": "abc"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}
