package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pidimsmart/internal/dataset"
	"pidimsmart/internal/shared/testutil"
	"pidimsmart/internal/source"
)

// MockDatasetProvider is a mock for the DatasetProvider interface
type MockDatasetProvider struct {
	mock.Mock
}

func (m *MockDatasetProvider) Get(ctx context.Context) (*dataset.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

func (m *MockDatasetProvider) Refresh(ctx context.Context) (*dataset.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

func (m *MockDatasetProvider) Stats() source.Stats {
	args := m.Called()
	return args.Get(0).(source.Stats)
}

func fixtureDataset(t *testing.T, f *testutil.SheetFixture) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ParseCSV(bytes.NewReader(f.CSV()))
	require.NoError(t, err)
	return ds
}
