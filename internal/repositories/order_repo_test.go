package repositories_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/repositories"
)

func newOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestGORMOrderRepository_CreateAndGet(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(newOrderTestDB(t))

	order := &models.Order{
		UserID: "user-1",
		CustomerInfo: models.CustomerInfo{
			Name:    "Nguyen Van A",
			Phone:   "0901234567",
			Address: "12 Ly Thuong Kiet",
		},
		Items: []models.OrderItem{
			{ProductID: "p1", VariantID: "v1", Quantity: 2, Price: 100000, Total: 200000},
		},
		TotalAmount:   200000,
		Status:        models.StatusPending,
		PaymentMethod: models.PaymentCOD,
		PaymentStatus: models.PaymentUnpaid,
	}

	assert.NoError(t, repo.Create(order))
	assert.NotEmpty(t, order.ID)

	loaded, err := repo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Len(t, loaded.Items, 1)
	assert.Equal(t, 200000.0, loaded.TotalAmount)
	assert.Equal(t, "0901234567", loaded.CustomerInfo.Phone)

	_, err = repo.GetByID("no-such-order")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestGORMOrderRepository_Filters(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(newOrderTestDB(t))

	seed := []models.Order{
		{UserID: "user-1", Status: models.StatusPending, TotalAmount: 100, CustomerInfo: models.CustomerInfo{Phone: "0901111111"}},
		{UserID: "user-1", Status: models.StatusCompleted, TotalAmount: 200, CustomerInfo: models.CustomerInfo{Phone: "0902222222"}},
		{UserID: "user-2", Status: models.StatusPending, TotalAmount: 300, CustomerInfo: models.CustomerInfo{Phone: "0903333333"}},
	}
	for i := range seed {
		assert.NoError(t, repo.Create(&seed[i]))
	}

	// By user
	orders, total, err := repo.GetAll(repositories.OrderFilter{UserID: "user-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	// By status
	orders, total, err = repo.GetAll(repositories.OrderFilter{Status: models.StatusPending})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// By phone substring
	orders, total, err = repo.GetAll(repositories.OrderFilter{Phone: "2222"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "0902222222", orders[0].CustomerInfo.Phone)

	// Date range excluding everything
	future := time.Now().Add(24 * time.Hour)
	_, total, err = repo.GetAll(repositories.OrderFilter{FromDate: &future})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// Pagination
	orders, total, err = repo.GetAll(repositories.OrderFilter{Page: 1, Limit: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 2)
}

func TestMockOrderRepository_FiltersAndStats(t *testing.T) {
	repo := repositories.NewMockOrderRepository()

	seed := []models.Order{
		{UserID: "user-1", Status: models.StatusPending, TotalAmount: 100, CustomerInfo: models.CustomerInfo{Phone: "0901111111"}},
		{UserID: "user-1", Status: models.StatusCompleted, TotalAmount: 200, CustomerInfo: models.CustomerInfo{Phone: "0902222222"}},
		{UserID: "user-2", Status: models.StatusPending, TotalAmount: 300, CustomerInfo: models.CustomerInfo{Phone: "0903333333"}},
	}
	for i := range seed {
		assert.NoError(t, repo.Create(&seed[i]))
	}

	orders, total, err := repo.GetAll(repositories.OrderFilter{UserID: "user-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	orders, total, err = repo.GetAll(repositories.OrderFilter{Phone: "3333"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "user-2", orders[0].UserID)

	loaded, err := repo.GetByID(seed[0].ID)
	assert.NoError(t, err)
	loaded.Status = models.StatusCancelled
	assert.NoError(t, repo.Update(loaded))

	stats, err := repo.StatsByStatus()
	assert.NoError(t, err)
	byStatus := make(map[string]repositories.StatusStat)
	for _, s := range stats {
		byStatus[s.Status] = s
	}
	assert.Equal(t, int64(1), byStatus[models.StatusCancelled].Count)
	assert.Equal(t, int64(1), byStatus[models.StatusPending].Count)
	assert.Equal(t, int64(1), byStatus[models.StatusCompleted].Count)

	_, err = repo.GetByID("no-such-order")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestGORMOrderRepository_StatsByStatus(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(newOrderTestDB(t))

	seed := []models.Order{
		{Status: models.StatusPending, TotalAmount: 100},
		{Status: models.StatusPending, TotalAmount: 150},
		{Status: models.StatusCompleted, TotalAmount: 500},
	}
	for i := range seed {
		assert.NoError(t, repo.Create(&seed[i]))
	}

	stats, err := repo.StatsByStatus()
	assert.NoError(t, err)

	byStatus := make(map[string]repositories.StatusStat)
	for _, s := range stats {
		byStatus[s.Status] = s
	}
	assert.Equal(t, int64(2), byStatus[models.StatusPending].Count)
	assert.Equal(t, 250.0, byStatus[models.StatusPending].TotalAmount)
	assert.Equal(t, int64(1), byStatus[models.StatusCompleted].Count)
	assert.Equal(t, 500.0, byStatus[models.StatusCompleted].TotalAmount)
}
