// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"golang.org/x/sync/errgroup"
)

// Source is the slice of the backend API the dashboard reads
type Source interface {
	ListOrders(ctx context.Context, token string) ([]backend.Order, error)
	ListProducts(ctx context.Context, filter backend.ProductFilter) ([]backend.Product, error)
	ListUsers(ctx context.Context, token string) ([]backend.User, error)
}

// Service computes admin dashboard figures from backend data
type Service struct {
	source Source
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(source Source, logger *logrus.Logger) *Service {
	return &Service{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// DashboardStats represents overall dashboard statistics.
//
// TotalRevenue counts every order that is not cancelled, whatever its
// payment or shipping state. DeliveredRevenue is the subset already
// delivered.
type DashboardStats struct {
	// Sales metrics
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	DeliveredRevenue decimal.Decimal `json:"delivered_revenue"`
	RevenueToday     decimal.Decimal `json:"revenue_today"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	AvgOrderValue    decimal.Decimal `json:"avg_order_value"`

	// Order metrics
	TotalOrders     int          `json:"total_orders"`
	OrdersToday     int          `json:"orders_today"`
	OrdersThisMonth int          `json:"orders_this_month"`
	OrdersByStatus  []StatusData `json:"orders_by_status"`

	// User metrics
	TotalUsers int `json:"total_users"`
	AdminUsers int `json:"admin_users"`

	// Product metrics
	TotalProducts      int            `json:"total_products"`
	OutOfStockProducts int            `json:"out_of_stock_products"`
	LowStockProducts   int            `json:"low_stock_products"`
	LowStock           []LowStockData `json:"low_stock"`

	DailyRevenue []TimeSeriesData `json:"daily_revenue"`
	RecentOrders []backend.Order  `json:"recent_orders"`
}

// StatusData counts orders in one status
type StatusData struct {
	Status string          `json:"status"`
	Count  int             `json:"count"`
	Value  decimal.Decimal `json:"value"`
}

// LowStockData is a product that needs restocking
type LowStockData struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	CurrentStock int    `json:"current_stock"`
}

// TimeSeriesData is one day of revenue
type TimeSeriesData struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count,omitempty"`
}

const (
	dailyRevenueDays = 7
	recentOrderLimit = 5
	lowStockListSize = 10
)

// GetDashboardStats fetches orders, products and users concurrently and
// computes the dashboard
func (s *Service) GetDashboardStats(ctx context.Context, token string) (*DashboardStats, error) {
	var (
		orders   []backend.Order
		products []backend.Product
		users    []backend.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.source.ListOrders(gctx, token)
		if err != nil {
			return fmt.Errorf("failed to load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = s.source.ListProducts(gctx, backend.ProductFilter{})
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = s.source.ListUsers(gctx, token)
		if err != nil {
			return fmt.Errorf("failed to load users: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Warn("Dashboard data unavailable")
		return nil, err
	}

	return Compute(orders, products, users, s.now()), nil
}

// Compute derives the dashboard from raw backend data
func Compute(orders []backend.Order, products []backend.Product, users []backend.User, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		TotalRevenue:     decimal.Zero,
		DeliveredRevenue: decimal.Zero,
		RevenueToday:     decimal.Zero,
		RevenueThisMonth: decimal.Zero,
		AvgOrderValue:    decimal.Zero,
		TotalOrders:      len(orders),
		TotalUsers:       len(users),
		TotalProducts:    len(products),
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	firstDay := today.AddDate(0, 0, -(dailyRevenueDays - 1))

	byStatus := make(map[string]*StatusData, len(backend.OrderStatuses))
	for _, status := range backend.OrderStatuses {
		byStatus[status] = &StatusData{Status: status, Value: decimal.Zero}
	}

	daily := make([]TimeSeriesData, dailyRevenueDays)
	for i := range daily {
		daily[i] = TimeSeriesData{Date: firstDay.AddDate(0, 0, i).Format("2006-01-02"), Value: decimal.Zero}
	}

	counted := 0
	for _, o := range orders {
		bucket, ok := byStatus[o.Status]
		if !ok {
			bucket = &StatusData{Status: o.Status, Value: decimal.Zero}
			byStatus[o.Status] = bucket
		}
		bucket.Count++
		bucket.Value = bucket.Value.Add(o.Total)

		created := o.CreatedAt.In(now.Location())
		if !created.Before(today) {
			stats.OrdersToday++
		}
		if !created.Before(thisMonth) {
			stats.OrdersThisMonth++
		}

		if o.Status == backend.OrderStatusCancelled {
			continue
		}

		counted++
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		if o.Status == backend.OrderStatusDelivered {
			stats.DeliveredRevenue = stats.DeliveredRevenue.Add(o.Total)
		}
		if !created.Before(today) {
			stats.RevenueToday = stats.RevenueToday.Add(o.Total)
		}
		if !created.Before(thisMonth) {
			stats.RevenueThisMonth = stats.RevenueThisMonth.Add(o.Total)
		}
		if !created.Before(firstDay) && created.Before(today.AddDate(0, 0, 1)) {
			day := int(created.Sub(firstDay).Hours() / 24)
			if day >= 0 && day < dailyRevenueDays {
				daily[day].Value = daily[day].Value.Add(o.Total)
				daily[day].Count++
			}
		}
	}

	if counted > 0 {
		stats.AvgOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(counted))).Round(2)
	}
	stats.DailyRevenue = daily

	for _, status := range backend.OrderStatuses {
		stats.OrdersByStatus = append(stats.OrdersByStatus, *byStatus[status])
		delete(byStatus, status)
	}
	extra := make([]string, 0, len(byStatus))
	for status := range byStatus {
		extra = append(extra, status)
	}
	sort.Strings(extra)
	for _, status := range extra {
		stats.OrdersByStatus = append(stats.OrdersByStatus, *byStatus[status])
	}

	for _, u := range users {
		if u.Role == "admin" {
			stats.AdminUsers++
		}
	}

	for _, p := range products {
		if p.Stock == nil {
			continue
		}
		switch stock := *p.Stock; {
		case stock <= 0:
			stats.OutOfStockProducts++
		case stock < catalog.LowStockThreshold:
			stats.LowStockProducts++
			stats.LowStock = append(stats.LowStock, LowStockData{
				ProductID:    p.ID,
				ProductName:  p.Name,
				CurrentStock: stock,
			})
		}
	}
	sort.SliceStable(stats.LowStock, func(i, j int) bool {
		return stats.LowStock[i].CurrentStock < stats.LowStock[j].CurrentStock
	})
	if len(stats.LowStock) > lowStockListSize {
		stats.LowStock = stats.LowStock[:lowStockListSize]
	}

	recent := make([]backend.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentOrderLimit {
		recent = recent[:recentOrderLimit]
	}
	stats.RecentOrders = recent

	stats.TotalRevenue = stats.TotalRevenue.Round(2)
	stats.DeliveredRevenue = stats.DeliveredRevenue.Round(2)
	return stats
}
