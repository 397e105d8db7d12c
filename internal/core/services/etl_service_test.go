package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/akalinowski/nbp-rates-etl/internal/core/domain"
	"github.com/akalinowski/nbp-rates-etl/internal/core/services"
)

// --- Mock RateSource ---
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchRates(ctx context.Context, date time.Time) (domain.Snapshot, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

// --- Mock DimensionRepository ---
type MockDimensionRepository struct {
	mock.Mock
}

func (m *MockDimensionRepository) LoadCurrencyMap(ctx context.Context) (domain.CurrencyMap, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CurrencyMap), args.Error(1)
}

func (m *MockDimensionRepository) InsertMissing(ctx context.Context, currencies []domain.NewCurrency) error {
	args := m.Called(ctx, currencies)
	return args.Error(0)
}

// --- Mock FactRepository ---
type MockFactRepository struct {
	mock.Mock
}

func (m *MockFactRepository) InsertFacts(ctx context.Context, facts []domain.RateFact) error {
	args := m.Called(ctx, facts)
	return args.Error(0)
}

// --- Test Suite ---
type ETLServiceTestSuite struct {
	suite.Suite
	mockSource *MockRateSource
	mockDims   *MockDimensionRepository
	mockFacts  *MockFactRepository
	service    *services.ETLService
	date       time.Time
}

func (suite *ETLServiceTestSuite) SetupTest() {
	suite.mockSource = new(MockRateSource)
	suite.mockDims = new(MockDimensionRepository)
	suite.mockFacts = new(MockFactRepository)
	suite.service = services.NewETLService(
		suite.mockSource,
		suite.mockDims,
		suite.mockFacts,
		services.NewTransformService(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	suite.date = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
}

func (suite *ETLServiceTestSuite) snapshot(rates ...domain.RawRate) domain.Snapshot {
	return domain.Snapshot{Rates: rates, Available: true}
}

func (suite *ETLServiceTestSuite) TestRun_NewCurrencyInsertedAndMapRefreshed() {
	ctx := context.Background()
	usd := domain.RawRate{Code: "USD", Name: "dolar amerykański", Mid: mustDecimal(suite.T(), "3.9725")}

	suite.mockSource.On("FetchRates", ctx, suite.date).Return(suite.snapshot(usd), nil).Once()
	// First read: empty dimension; second read after insert sees the new id.
	suite.mockDims.On("LoadCurrencyMap", ctx).Return(domain.CurrencyMap{}, nil).Once()
	suite.mockDims.On("InsertMissing", ctx, []domain.NewCurrency{
		{Code: "USD", Name: "dolar amerykański"},
	}).Return(nil).Once()
	suite.mockDims.On("LoadCurrencyMap", ctx).Return(domain.CurrencyMap{"USD": 1}, nil).Once()
	suite.mockFacts.On("InsertFacts", ctx, mock.MatchedBy(func(facts []domain.RateFact) bool {
		return len(facts) == 1 &&
			facts[0].CurrencyID == 1 &&
			facts[0].RateDate.Equal(suite.date) &&
			facts[0].Rate.Equal(usd.Mid)
	})).Return(nil).Once()

	err := suite.service.Run(ctx, suite.date)

	suite.Require().NoError(err)
	suite.mockSource.AssertExpectations(suite.T())
	suite.mockDims.AssertExpectations(suite.T())
	suite.mockFacts.AssertExpectations(suite.T())
}

func (suite *ETLServiceTestSuite) TestRun_NoDataDayIsSuccessWithoutStoreCalls() {
	ctx := context.Background()

	suite.mockSource.On("FetchRates", ctx, suite.date).
		Return(domain.Snapshot{Available: false}, nil).Once()

	err := suite.service.Run(ctx, suite.date)

	suite.Require().NoError(err)
	suite.mockDims.AssertNotCalled(suite.T(), "LoadCurrencyMap", mock.Anything)
	suite.mockDims.AssertNotCalled(suite.T(), "InsertMissing", mock.Anything, mock.Anything)
	suite.mockFacts.AssertNotCalled(suite.T(), "InsertFacts", mock.Anything, mock.Anything)
}

func (suite *ETLServiceTestSuite) TestRun_KnownCurrenciesSkipDimensionInsert() {
	ctx := context.Background()
	usd := domain.RawRate{Code: "USD", Name: "dolar amerykański", Mid: mustDecimal(suite.T(), "3.9725")}
	eur := domain.RawRate{Code: "EUR", Name: "euro", Mid: mustDecimal(suite.T(), "4.3015")}

	suite.mockSource.On("FetchRates", ctx, suite.date).Return(suite.snapshot(usd, eur), nil).Once()
	// Map is loaded exactly once: nothing missing means no refresh.
	suite.mockDims.On("LoadCurrencyMap", ctx).Return(domain.CurrencyMap{"USD": 1, "EUR": 2}, nil).Once()
	suite.mockFacts.On("InsertFacts", ctx, mock.MatchedBy(func(facts []domain.RateFact) bool {
		return len(facts) == 2
	})).Return(nil).Once()

	err := suite.service.Run(ctx, suite.date)

	suite.Require().NoError(err)
	suite.mockDims.AssertExpectations(suite.T())
	suite.mockDims.AssertNotCalled(suite.T(), "InsertMissing", mock.Anything, mock.Anything)
}

func (suite *ETLServiceTestSuite) TestRun_SecondRunForSameDateIsIdempotent() {
	ctx := context.Background()
	usd := domain.RawRate{Code: "USD", Name: "dolar amerykański", Mid: mustDecimal(suite.T(), "3.9725")}

	// The dimension already holds USD from the first run, so the second
	// run reads the map once and re-offers the same fact row, which the
	// store's unique constraint absorbs.
	suite.mockSource.On("FetchRates", ctx, suite.date).Return(suite.snapshot(usd), nil).Once()
	suite.mockDims.On("LoadCurrencyMap", ctx).Return(domain.CurrencyMap{"USD": 1}, nil).Once()
	suite.mockFacts.On("InsertFacts", ctx, mock.MatchedBy(func(facts []domain.RateFact) bool {
		return len(facts) == 1 && facts[0].CurrencyID == 1
	})).Return(nil).Once()

	err := suite.service.Run(ctx, suite.date)

	suite.Require().NoError(err)
	suite.mockDims.AssertNotCalled(suite.T(), "InsertMissing", mock.Anything, mock.Anything)
}

func (suite *ETLServiceTestSuite) TestRun_UnresolvedCurrencyDroppedRunSucceeds() {
	ctx := context.Background()
	usd := domain.RawRate{Code: "USD", Name: "dolar amerykański", Mid: mustDecimal(suite.T(), "3.9725")}
	xxx := domain.RawRate{Code: "XXX", Name: "unknown", Mid: mustDecimal(suite.T(), "1.0000")}

	suite.mockSource.On("FetchRates", ctx, suite.date).Return(suite.snapshot(usd, xxx), nil).Once()
	suite.mockDims.On("LoadCurrencyMap", ctx).Return(domain.CurrencyMap{"USD": 1}, nil).Once()
	suite.mockDims.On("InsertMissing", ctx, []domain.NewCurrency{
		{Code: "XXX", Name: "unknown"},
	}).Return(nil).Once()
	// Store inconsistency: XXX still absent after the refresh.
	suite.mockDims.On("LoadCurrencyMap", ctx).Return(domain.CurrencyMap{"USD": 1}, nil).Once()
	suite.mockFacts.On("InsertFacts", ctx, mock.MatchedBy(func(facts []domain.RateFact) bool {
		return len(facts) == 1 && facts[0].CurrencyID == 1
	})).Return(nil).Once()

	err := suite.service.Run(ctx, suite.date)

	suite.Require().NoError(err)
	suite.mockFacts.AssertExpectations(suite.T())
}

func (suite *ETLServiceTestSuite) TestRun_FetchErrorAbortsBeforeAnyStoreCall() {
	ctx := context.Background()
	fetchErr := errors.New("connection refused")

	suite.mockSource.On("FetchRates", ctx, suite.date).Return(domain.Snapshot{}, fetchErr).Once()

	err := suite.service.Run(ctx, suite.date)

	suite.Require().ErrorIs(err, fetchErr)
	suite.mockDims.AssertNotCalled(suite.T(), "LoadCurrencyMap", mock.Anything)
	suite.mockFacts.AssertNotCalled(suite.T(), "InsertFacts", mock.Anything, mock.Anything)
}

func (suite *ETLServiceTestSuite) TestRun_DimensionInsertErrorAbortsBeforeFactInsert() {
	ctx := context.Background()
	usd := domain.RawRate{Code: "USD", Name: "dolar amerykański", Mid: mustDecimal(suite.T(), "3.9725")}
	storeErr := errors.New("connection reset")

	suite.mockSource.On("FetchRates", ctx, suite.date).Return(suite.snapshot(usd), nil).Once()
	suite.mockDims.On("LoadCurrencyMap", ctx).Return(domain.CurrencyMap{}, nil).Once()
	suite.mockDims.On("InsertMissing", ctx, mock.Anything).Return(storeErr).Once()

	err := suite.service.Run(ctx, suite.date)

	suite.Require().ErrorIs(err, storeErr)
	suite.mockFacts.AssertNotCalled(suite.T(), "InsertFacts", mock.Anything, mock.Anything)
}

func (suite *ETLServiceTestSuite) TestRun_FactInsertErrorSurfaces() {
	ctx := context.Background()
	usd := domain.RawRate{Code: "USD", Name: "dolar amerykański", Mid: mustDecimal(suite.T(), "3.9725")}
	storeErr := errors.New("constraint failure")

	suite.mockSource.On("FetchRates", ctx, suite.date).Return(suite.snapshot(usd), nil).Once()
	suite.mockDims.On("LoadCurrencyMap", ctx).Return(domain.CurrencyMap{"USD": 1}, nil).Once()
	suite.mockFacts.On("InsertFacts", ctx, mock.Anything).Return(storeErr).Once()

	err := suite.service.Run(ctx, suite.date)

	suite.Require().ErrorIs(err, storeErr)
}

func TestETLServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ETLServiceTestSuite))
}
