package model

type MonthlyRevenue struct {
	Year       int
	Month      int
	TotalCents int64
}

type PlanRevenue struct {
	PlanType   PlanType
	TotalCents int64
	Count      int
}

type Overview struct {
	TotalUsers          int
	ActiveSubscriptions int
	TotalRevenueCents   int64
	MonthlyRevenue      []MonthlyRevenue
}

// Page describes an offset page computed from 1-based page numbers.
type Page struct {
	Page  int
	Limit int
}

func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Pages returns the number of pages for total rows, at least 1.
func (p Page) Pages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.Limit - 1) / p.Limit
}
