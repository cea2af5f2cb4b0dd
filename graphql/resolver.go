package graphql

import (
	"context"
	"strconv"
	"strings"
	"time"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/shopspring/decimal"

	"problemsolving.GO/config"
	"problemsolving.GO/core/apperr"
	missionEntity "problemsolving.GO/model/entity/mission"
	"problemsolving.GO/service/route"
)

// RootResolver is the root for graphql-go.
type RootResolver struct {
	Routes         *route.Service
	DefaultCompany string
}

type missionsArgs struct {
	Company *string
	Status  *string
	Limit   *int32
}

type missionArgs struct {
	Company *string
	ID      gql.ID
}

type routeArgs struct {
	Company   *string
	MissionID gql.ID
}

// company picks the explicit argument, then the request's company, then the configured default.
func (r *RootResolver) company(ctx context.Context, arg *string) (string, error) {
	var c string
	if arg != nil {
		c = config.NormalizeCompany(*arg)
	}
	if c == "" {
		c = config.NormalizeCompany(CompanyFromContext(ctx))
	}
	if c == "" {
		c = r.DefaultCompany
	}
	if c == "" {
		return "", apperr.Invalid("company is required")
	}
	return c, nil
}

func parseID(id gql.ID) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(string(id)), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Invalid("invalid id %q", string(id))
	}
	return n, nil
}

func (r *RootResolver) Missions(ctx context.Context, args missionsArgs) ([]*MissionResolver, error) {
	company, err := r.company(ctx, args.Company)
	if err != nil {
		return nil, err
	}
	status, limit := "", 0
	if args.Status != nil {
		status = *args.Status
	}
	if args.Limit != nil {
		limit = int(*args.Limit)
	}
	list, err := r.Routes.List(ctx, company, status, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*MissionResolver, 0, len(list))
	for i := range list {
		out = append(out, &MissionResolver{m: &list[i].Mission, s: list[i].Summary})
	}
	return out, nil
}

func (r *RootResolver) Mission(ctx context.Context, args missionArgs) (*DetailsResolver, error) {
	company, err := r.company(ctx, args.Company)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	d, err := r.Routes.Details(ctx, company, id)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &DetailsResolver{d: d}, nil
}

func (r *RootResolver) Route(ctx context.Context, args routeArgs) ([]*StopResolver, error) {
	company, err := r.company(ctx, args.Company)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.MissionID)
	if err != nil {
		return nil, err
	}
	stops, err := r.Routes.Route(ctx, company, id)
	if err != nil {
		return nil, err
	}
	return stopResolvers(stops), nil
}

func (r *RootResolver) NextPosition(ctx context.Context, args routeArgs) (*StopResolver, error) {
	company, err := r.company(ctx, args.Company)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.MissionID)
	if err != nil {
		return nil, err
	}
	stop, err := r.Routes.Next(ctx, company, id)
	if err != nil || stop == nil {
		return nil, err
	}
	return &StopResolver{s: stop}, nil
}

func (r *RootResolver) Summary(ctx context.Context, args routeArgs) (*SummaryResolver, error) {
	company, err := r.company(ctx, args.Company)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.MissionID)
	if err != nil {
		return nil, err
	}
	s, err := r.Routes.Summary(ctx, company, id)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &SummaryResolver{s: s}, nil
}

// --- object resolvers ---

type MissionResolver struct {
	m *missionEntity.Mission
	s *route.Summary
}

func (r *MissionResolver) ID() gql.ID { return gql.ID(strconv.FormatUint(r.m.ID, 10)) }
func (r *MissionResolver) MissionCode() string { return r.m.MissionCode }
func (r *MissionResolver) BasketCode() string { return r.m.BasketCode }
func (r *MissionResolver) Status() string { return r.m.Status }
func (r *MissionResolver) CreatedBy() *string { return optString(r.m.CreatedBy) }
func (r *MissionResolver) CreatedAt() string { return r.m.CreatedAt.Format(time.RFC3339) }
func (r *MissionResolver) StartedAt() *string { return optTime(r.m.StartedAt) }
func (r *MissionResolver) CompletedAt() *string { return optTime(r.m.CompletedAt) }
func (r *MissionResolver) Notes() *string { return optString(r.m.Notes) }

func (r *MissionResolver) ReferencePickListID() *string {
	if r.m.ReferencePickListID == nil {
		return nil
	}
	s := strconv.FormatInt(*r.m.ReferencePickListID, 10)
	return &s
}

func (r *MissionResolver) Summary() *SummaryResolver {
	if r.s == nil {
		return nil
	}
	return &SummaryResolver{s: r.s}
}

type ItemResolver struct {
	i *missionEntity.Item
}

func (r *ItemResolver) ID() gql.ID { return gql.ID(strconv.FormatUint(r.i.ID, 10)) }
func (r *ItemResolver) OrderNumber() string { return r.i.OrderNumber }
func (r *ItemResolver) PickListID() string { return strconv.FormatInt(r.i.PickListID, 10) }
func (r *ItemResolver) SKU() string { return r.i.SKU }
func (r *ItemResolver) Description() *string { return optString(r.i.Description) }
func (r *ItemResolver) QtyOrdered() float64 { return r.i.QtyOrdered.InexactFloat64() }
func (r *ItemResolver) QtyShipped() float64 { return r.i.QtyShipped.InexactFloat64() }
func (r *ItemResolver) QtyMissing() float64 { return r.i.QtyMissing.InexactFloat64() }
func (r *ItemResolver) QtyFound() float64 { return r.i.QtyFound.InexactFloat64() }
func (r *ItemResolver) IsResolved() bool { return r.i.IsResolved }
func (r *ItemResolver) BasketCodes() *string { return optString(r.i.BasketCodes) }

type StopResolver struct {
	s *route.Stop
}

func (r *StopResolver) Sequence() int32 { return int32(r.s.Sequence) }
func (r *StopResolver) CheckID() gql.ID { return gql.ID(strconv.FormatUint(r.s.CheckID, 10)) }
func (r *StopResolver) UnitLoadID() string { return r.s.UnitLoadID }
func (r *StopResolver) PositionCode() string { return r.s.PositionCode }
func (r *StopResolver) Status() string { return r.s.Status }
func (r *StopResolver) CheckedBy() *string { return optString(r.s.CheckedBy) }
func (r *StopResolver) Notes() *string { return optString(r.s.Notes) }
func (r *StopResolver) SKU() string { return r.s.SKU }
func (r *StopResolver) Description() *string { return optString(r.s.Description) }
func (r *StopResolver) OrderNumber() string { return r.s.OrderNumber }
func (r *StopResolver) PickListID() string { return strconv.FormatInt(r.s.PickListID, 10) }
func (r *StopResolver) QtyMissing() float64 { return r.s.QtyMissing.InexactFloat64() }
func (r *StopResolver) ItemResolved() bool { return r.s.ItemResolved }

func (r *StopResolver) QtyFound() *float64 {
	if !r.s.QtyFound.Valid {
		return nil
	}
	return optFloat(r.s.QtyFound.Decimal)
}

type SummaryResolver struct {
	s *route.Summary
}

func (r *SummaryResolver) TotalItems() int32 { return int32(r.s.TotalItems) }
func (r *SummaryResolver) ResolvedItems() int32 { return int32(r.s.ResolvedItems) }
func (r *SummaryResolver) TotalChecks() int32 { return int32(r.s.TotalChecks) }
func (r *SummaryResolver) PendingChecks() int32 { return int32(r.s.PendingChecks) }
func (r *SummaryResolver) FoundChecks() int32 { return int32(r.s.FoundChecks) }
func (r *SummaryResolver) NotFoundChecks() int32 { return int32(r.s.NotFoundChecks) }
func (r *SummaryResolver) SkippedChecks() int32 { return int32(r.s.SkippedChecks) }
func (r *SummaryResolver) CompletionPercentage() float64 { return r.s.CompletionPercentage }

type DetailsResolver struct {
	d *route.Details
}

func (r *DetailsResolver) Mission() *MissionResolver {
	return &MissionResolver{m: r.d.Mission, s: r.d.Summary}
}

func (r *DetailsResolver) Items() []*ItemResolver {
	out := make([]*ItemResolver, 0, len(r.d.Items))
	for i := range r.d.Items {
		out = append(out, &ItemResolver{i: &r.d.Items[i]})
	}
	return out
}

func (r *DetailsResolver) Route() []*StopResolver { return stopResolvers(r.d.Route) }
func (r *DetailsResolver) Summary() *SummaryResolver { return &SummaryResolver{s: r.d.Summary} }

func stopResolvers(stops []route.Stop) []*StopResolver {
	out := make([]*StopResolver, 0, len(stops))
	for i := range stops {
		out = append(out, &StopResolver{s: &stops[i]})
	}
	return out
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func optFloat(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
