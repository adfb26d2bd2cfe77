package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"foodhub/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestItemHandler_GetAll(t *testing.T) {
	items := []model.Item{
		{ID: "A", Name: "Apple", Unit: "kg", Price: decimal.RequireFromString("3.20"), Quantity: 5, IsActive: true},
		{ID: "B", Name: "Bread", Unit: "loaf", Price: decimal.RequireFromString("2.50"), IsActive: true},
	}

	tests := []struct {
		name           string
		query          string
		setupMock      func(m *MockItemService)
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "Defaults",
			setupMock: func(m *MockItemService) {
				m.On("GetAll", mock.Anything, 0, 0).Return(items, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:  "Custom pagination",
			query: "?limit=1&offset=1",
			setupMock: func(m *MockItemService) {
				m.On("GetAll", mock.Anything, 1, 1).Return(items[1:], nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Invalid limit",
			query:          "?limit=abc",
			setupMock:      func(m *MockItemService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Negative offset",
			query:          "?offset=-5",
			setupMock:      func(m *MockItemService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Service error",
			setupMock: func(m *MockItemService) {
				m.On("GetAll", mock.Anything, 0, 0).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockItemService)
			tt.setupMock(svc)
			h := NewItemHandler(svc, zerolog.Nop())

			rec := serve(http.MethodGet, "/items", h.GetAll, newRequest(http.MethodGet, "/items"+tt.query, ""))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var got []model.Item
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Len(t, got, tt.expectedCount)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestItemHandler_GetByID(t *testing.T) {
	item := &model.Item{ID: "A", Name: "Apple", Price: decimal.RequireFromString("3.20"), IsActive: true}

	tests := []struct {
		name           string
		path           string
		setupMock      func(m *MockItemService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			path: "/items/A",
			setupMock: func(m *MockItemService) {
				m.On("GetByID", mock.Anything, "A").Return(item, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Not found",
			path: "/items/Z",
			setupMock: func(m *MockItemService) {
				m.On("GetByID", mock.Anything, "Z").Return(nil, model.ErrItemNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeItemNotFound,
		},
		{
			name: "Service error",
			path: "/items/A",
			setupMock: func(m *MockItemService) {
				m.On("GetByID", mock.Anything, "A").Return(nil, errors.New("timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockItemService)
			tt.setupMock(svc)
			h := NewItemHandler(svc, zerolog.Nop())

			rec := serve(http.MethodGet, "/items/{id}", h.GetByID, newRequest(http.MethodGet, tt.path, ""))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error)
			} else {
				var got model.Item
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, "Apple", got.Name)
			}
			svc.AssertExpectations(t)
		})
	}
}
