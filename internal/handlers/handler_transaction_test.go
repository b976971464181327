package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/apperrors"
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	portssvc "github.com/dhanrajs/fx_exchange_app/internal/core/ports/services"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
	"github.com/dhanrajs/fx_exchange_app/internal/handlers"
	"github.com/dhanrajs/fx_exchange_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) UpdateTransactionDetails(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ReverseTransaction(ctx context.Context, transactionID string, userID string) error {
	args := m.Called(ctx, transactionID, userID)
	return args.Error(0)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountBalance(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return decimal.Decimal{}, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Test Suite ---
type TransactionHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *MockLedgerService
	jwtSecret         string
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockLedgerService = new(MockLedgerService)

	cfg := &config.Config{
		JWTSecret:         suite.jwtSecret,
		JWTIssuer:         "fxe-test",
		JWTExpiryDuration: time.Hour,
		IsProduction:      true, // skip swagger routes
		LoginRateLimit:    "5-M",
	}
	container := &portssvc.ServiceContainer{
		Ledger:  suite.mockLedgerService,
		Account: new(MockAccountService),
		User:    new(MockUserService),
	}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func (suite *TransactionHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "fxe-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *TransactionHandlerTestSuite) doRequest(method, path, token string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_Success() {
	userID := uuid.NewString()
	amount := decimal.NewFromInt(100)
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		Type:          domain.CashIn,
		CurrencyCode:  "USD",
		Amount:        amount,
		Status:        domain.Completed,
	}

	suite.mockLedgerService.On("CreateTransaction", mock.Anything, mock.AnythingOfType("dto.CreateTransactionRequest"), userID).
		Return(txn, nil).Once()

	body := gin.H{
		"type":          "CASH_IN",
		"currencyCode":  "USD",
		"amount":        "100",
		"customerName":  "Jordan Ali",
		"customerEmail": "jordan.ali@example.com",
	}
	w := suite.doRequest(http.MethodPost, "/api/v1/transactions", suite.generateTestToken(userID), body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(txn.TransactionID, resp.TransactionID)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_Unauthorized() {
	w := suite.doRequest(http.MethodPost, "/api/v1/transactions", "", gin.H{})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_ValidationError() {
	suite.mockLedgerService.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError([]string{"amount must be greater than zero"})).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions", suite.generateTestToken(uuid.NewString()), gin.H{
		"type":         "CASH_IN",
		"currencyCode": "USD",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "amount must be greater than zero")
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_InsufficientBalance() {
	suite.mockLedgerService.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrInsufficientBalance).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions", suite.generateTestToken(uuid.NewString()), gin.H{
		"type":          "CASH_OUT",
		"currencyCode":  "USD",
		"amount":        "50",
		"customerName":  "Jordan Ali",
		"customerEmail": "jordan.ali@example.com",
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestGetTransaction_NotFound() {
	transactionID := uuid.NewString()
	suite.mockLedgerService.On("GetTransactionByID", mock.Anything, transactionID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions/"+transactionID, suite.generateTestToken(uuid.NewString()), nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestReverseTransaction_Success() {
	userID := uuid.NewString()
	transactionID := uuid.NewString()
	suite.mockLedgerService.On("ReverseTransaction", mock.Anything, transactionID, userID).
		Return(nil).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/transactions/"+transactionID, suite.generateTestToken(userID), nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestReverseTransaction_AlreadyReversed() {
	transactionID := uuid.NewString()
	suite.mockLedgerService.On("ReverseTransaction", mock.Anything, transactionID, mock.Anything).
		Return(apperrors.ErrAlreadyReversed).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/transactions/"+transactionID, suite.generateTestToken(uuid.NewString()), nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestReverseTransaction_ConflictAfterRetries() {
	transactionID := uuid.NewString()
	suite.mockLedgerService.On("ReverseTransaction", mock.Anything, transactionID, mock.Anything).
		Return(apperrors.ErrConcurrencyConflict).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/transactions/"+transactionID, suite.generateTestToken(uuid.NewString()), nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestUpdateTransaction_Success() {
	userID := uuid.NewString()
	transactionID := uuid.NewString()
	notes := "corrected"
	updated := &domain.Transaction{TransactionID: transactionID, Notes: notes, Status: domain.Completed}

	suite.mockLedgerService.On("UpdateTransactionDetails", mock.Anything, transactionID,
		mock.MatchedBy(func(req dto.UpdateTransactionRequest) bool {
			return req.Notes != nil && *req.Notes == notes
		}), userID).Return(updated, nil).Once()

	w := suite.doRequest(http.MethodPatch, "/api/v1/transactions/"+transactionID, suite.generateTestToken(userID), gin.H{"notes": notes})

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestListTransactions_PassesParams() {
	suite.mockLedgerService.On("ListTransactions", mock.Anything,
		mock.MatchedBy(func(params dto.ListTransactionsParams) bool {
			return params.Limit == 5 && params.Type != nil && *params.Type == "BUY"
		})).Return(&dto.ListTransactionsResponse{Transactions: []dto.TransactionResponse{}}, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions?limit=5&type=BUY", suite.generateTestToken(uuid.NewString()), nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func TestTransactionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
