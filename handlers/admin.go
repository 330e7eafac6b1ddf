package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/soleshop/soleshop-backend-go/database"
	"github.com/soleshop/soleshop-backend-go/models"
)

type NewUserCounts struct {
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"thisWeek"`
	ThisMonth int64 `json:"thisMonth"`
}

type DashboardStats struct {
	TotalProducts     int64            `json:"totalProducts"`
	TotalUsers        int64            `json:"totalUsers"`
	TotalOrders       int64            `json:"totalOrders"`
	TotalRevenue      float64          `json:"totalRevenue"`
	NewUsers          NewUserCounts    `json:"newUsers"`
	OrderStatusCounts map[string]int64 `json:"orderStatusCounts"`
}

// startOfDay is the local midnight cutoff for the "today" counter.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func weekAgo(t time.Time) time.Time  { return t.AddDate(0, 0, -7) }
func monthAgo(t time.Time) time.Time { return t.AddDate(0, -1, 0) }

func GetDashboardStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	stats := DashboardStats{
		OrderStatusCounts: map[string]int64{
			"Pending":    0,
			"Processing": 0,
			"Shipped":    0,
			"Cancelled":  0,
		},
	}

	var err error
	if stats.TotalProducts, err = database.Products().CountDocuments(ctx, bson.M{}); err != nil {
		return statsError(c, "count products", err)
	}
	if stats.TotalUsers, err = database.Users().CountDocuments(ctx, bson.M{}); err != nil {
		return statsError(c, "count users", err)
	}
	if stats.TotalOrders, err = database.Orders().CountDocuments(ctx, bson.M{}); err != nil {
		return statsError(c, "count orders", err)
	}

	if stats.TotalRevenue, err = deliveredRevenue(ctx); err != nil {
		return statsError(c, "sum revenue", err)
	}

	now := time.Now()
	users := database.Users()
	if stats.NewUsers.Today, err = users.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": startOfDay(now)}}); err != nil {
		return statsError(c, "count new users today", err)
	}
	if stats.NewUsers.ThisWeek, err = users.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": weekAgo(now)}}); err != nil {
		return statsError(c, "count new users this week", err)
	}
	if stats.NewUsers.ThisMonth, err = users.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": monthAgo(now)}}); err != nil {
		return statsError(c, "count new users this month", err)
	}

	counts, err := orderStatusCounts(ctx)
	if err != nil {
		return statsError(c, "count order statuses", err)
	}
	for status := range stats.OrderStatusCounts {
		if n, ok := counts[status]; ok {
			stats.OrderStatusCounts[status] = n
		}
	}

	return c.JSON(http.StatusOK, stats)
}

func statsError(c echo.Context, op string, err error) error {
	zap.L().Error("dashboard stats failed", zap.String("op", op), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to compute stats"})
}

// deliveredRevenue sums totalPrice over all Delivered orders.
func deliveredRevenue(ctx context.Context) (float64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"orderStatus": models.OrderStatusDelivered}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$totalPrice"}}},
	}

	cursor, err := database.Orders().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func orderStatusCounts(ctx context.Context) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$orderStatus", "count": bson.M{"$sum": 1}}},
	}

	cursor, err := database.Orders().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// AdminUserRow is one row of the administrative user listing, enriched with
// the user's order activity.
type AdminUserRow struct {
	models.User
	OrderCount  int64      `json:"orderCount"`
	TotalSpent  float64    `json:"totalSpent"`
	LastOrderAt *time.Time `json:"lastOrderAt,omitempty"`
}

type userOrderSummary struct {
	UserID      primitive.ObjectID `bson:"_id"`
	OrderCount  int64              `bson:"orderCount"`
	TotalSpent  float64            `bson:"totalSpent"`
	LastOrderAt time.Time          `bson:"lastOrderAt"`
}

// GetUsers returns the user list with per-user order count, Delivered-only
// spend and most recent order time, computed in a single grouped
// aggregation over the orders collection rather than a per-user scan.
func GetUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.Users().Find(ctx, bson.M{})
	if err != nil {
		zap.L().Error("failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch users"})
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		zap.L().Error("failed to decode users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch users"})
	}

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":        "$user",
			"orderCount": bson.M{"$sum": 1},
			"totalSpent": bson.M{"$sum": bson.M{"$cond": []interface{}{
				bson.M{"$eq": []interface{}{"$orderStatus", models.OrderStatusDelivered}},
				"$totalPrice",
				0,
			}}},
			"lastOrderAt": bson.M{"$max": "$createdAt"},
		}},
	}

	aggCursor, err := database.Orders().Aggregate(ctx, pipeline)
	if err != nil {
		zap.L().Error("failed to aggregate user orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch users"})
	}

	var summaries []userOrderSummary
	if err := aggCursor.All(ctx, &summaries); err != nil {
		zap.L().Error("failed to decode user order summaries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch users"})
	}

	byUser := make(map[primitive.ObjectID]userOrderSummary, len(summaries))
	for _, s := range summaries {
		byUser[s.UserID] = s
	}

	rows := make([]AdminUserRow, 0, len(users))
	for _, user := range users {
		row := AdminUserRow{User: user}
		if s, ok := byUser[user.ID]; ok {
			row.OrderCount = s.OrderCount
			row.TotalSpent = s.TotalSpent
			last := s.LastOrderAt
			row.LastOrderAt = &last
		}
		rows = append(rows, row)
	}

	return c.JSON(http.StatusOK, rows)
}
