package insight

import "context"

type InsightServiceAPI interface {
	GetSafetyInsights(ctx context.Context, location string) (*InsightResult, error)
	FindSafeHavens(ctx context.Context, lat, lng float64) (*HavenResult, error)
}
