package lifecycle_test

import (
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface.
// It uses testify/mock to allow flexible expectation setting in tests.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) FindAuthority(idOrEmail string) (*models.User, error) {
	args := m.Called(idOrEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByTelegramChat(chatID string) (*models.User, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SaveCategory(category *models.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockStorage) GetCategoryByName(name string) (*models.Category, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockStorage) CreateComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(complaintID string) (*models.Complaint, error) {
	args := m.Called(complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) GetComplaintsForCitizen(citizenID string) ([]models.Complaint, error) {
	args := m.Called(citizenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) GetAssignedComplaints(authority *models.User) ([]models.Complaint, error) {
	args := m.Called(authority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) CountComplaintsInYear(year int) (int64, error) {
	args := m.Called(year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) FindEscalatable(now time.Time) ([]models.Complaint, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) CommitTransition(c *models.Complaint, event *models.TimelineEvent, photos []models.EvidencePhoto, delta *storage.HandlerStatDelta) error {
	args := m.Called(c, event, photos, delta)
	return args.Error(0)
}

// fakeNotifier records every published event for assertions.
type fakeNotifier struct {
	Events []models.Event
}

func (n *fakeNotifier) Publish(ev models.Event) error {
	n.Events = append(n.Events, ev)
	return nil
}

func (n *fakeNotifier) topics() []string {
	out := make([]string, 0, len(n.Events))
	for _, ev := range n.Events {
		out = append(out, ev.Topic)
	}
	return out
}
