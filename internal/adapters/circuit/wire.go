package circuit

import (
	"delivery-route-builder/internal/domain"
	"encoding/json"
	"time"
)

type startsJSON struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (s startsJSON) time() time.Time {
	if s.Year == 0 {
		return time.Time{}
	}
	return time.Date(s.Year, time.Month(s.Month), s.Day, 0, 0, 0, 0, time.UTC)
}

// idRefs decodes either ["a", "b"] or [{"id": "a"}, {"id": "b"}].
type idRefs []string

func (r *idRefs) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		ids = append(ids, obj.ID)
	}
	*r = ids
	return nil
}

type planJSON struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Starts   startsJSON `json:"starts"`
	Routes   idRefs     `json:"routes"`
	Drivers  idRefs     `json:"drivers"`
	Writable bool       `json:"writable"`
}

func (p planJSON) domain() domain.Plan {
	return domain.Plan{
		ID:        p.ID,
		Title:     p.Title,
		Starts:    p.Starts.time(),
		RouteIDs:  []string(p.Routes),
		DriverIDs: []string(p.Drivers),
		Writable:  p.Writable,
	}
}

type createPlanJSON struct {
	Title   string     `json:"title"`
	Starts  startsJSON `json:"starts"`
	Drivers []string   `json:"drivers"`
}

type driverJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// routeJSON is the route embedded in a stop. The service may send it as a
// bare id, an object, or null for stops not yet routed.
type routeJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StopCount int    `json:"stopCount"`
	Driver    string `json:"driver"`
	Plan      string `json:"plan"`
}

func (r *routeJSON) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*r = routeJSON{ID: id}
		return nil
	}
	type plain routeJSON
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = routeJSON(p)
	return nil
}

type recipientJSON struct {
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
}

type addressJSON struct {
	Address        string `json:"address,omitempty"`
	AddressName    string `json:"addressName,omitempty"`
	AddressLineOne string `json:"addressLineOne,omitempty"`
	AddressLineTwo string `json:"addressLineTwo,omitempty"`
	PlaceID        string `json:"placeId,omitempty"`
}

type orderInfoJSON struct {
	Products []string `json:"products,omitempty"`
}

type stopJSON struct {
	ID           string        `json:"id"`
	Plan         string        `json:"plan"`
	Route        *routeJSON    `json:"route"`
	StopPosition int           `json:"stopPosition"`
	Recipient    recipientJSON `json:"recipient"`
	Address      addressJSON   `json:"address"`
	Notes        string        `json:"notes"`
	OrderInfo    orderInfoJSON `json:"orderInfo"`
	PackageCount *int          `json:"packageCount"`
}

func (s stopJSON) domain(planID string) domain.Stop {
	out := domain.Stop{
		ID:           s.ID,
		PlanID:       firstNonEmpty(s.Plan, planID),
		Position:     s.StopPosition,
		Name:         s.Recipient.Name,
		Phone:        s.Recipient.Phone,
		Email:        s.Recipient.Email,
		Neighborhood: s.Recipient.ExternalID,
		Notes:        s.Notes,
		FullAddress:  s.Address.Address,
		AddressLine1: s.Address.AddressLineOne,
		AddressLine2: s.Address.AddressLineTwo,
		PlaceID:      s.Address.PlaceID,
	}
	if s.Route != nil {
		out.RouteID = s.Route.ID
	}
	if len(s.OrderInfo.Products) > 0 {
		out.BoxType = s.OrderInfo.Products[0]
	}
	if s.PackageCount != nil {
		out.OrderCount = *s.PackageCount
	}
	return out
}

type importStopJSON struct {
	Address      addressJSON   `json:"address"`
	Recipient    recipientJSON `json:"recipient"`
	OrderInfo    orderInfoJSON `json:"orderInfo"`
	PackageCount int           `json:"packageCount,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

func newImportStop(s domain.ChunkedStop) importStopJSON {
	stop := importStopJSON{
		Address: addressJSON{
			AddressName:    s.Name,
			AddressLineOne: s.Address,
		},
		Recipient: recipientJSON{
			Name:       s.Name,
			Phone:      s.Phone,
			Email:      s.Email,
			ExternalID: s.Neighborhood,
		},
		PackageCount: s.OrderCount,
		Notes:        s.Notes,
	}
	if s.BoxType != "" {
		stop.OrderInfo.Products = []string{s.BoxType}
	}
	return stop
}

type importResultJSON struct {
	Success []string          `json:"success"`
	Failed  []json.RawMessage `json:"failed"`
}

type operationJSON struct {
	ID       string `json:"id"`
	Done     bool   `json:"done"`
	Metadata struct {
		Canceled bool `json:"canceled"`
	} `json:"metadata"`
	Result *struct {
		SkippedStops []json.RawMessage `json:"skippedStops"`
		Code         string            `json:"code"`
	} `json:"result"`
}

type distributeJSON struct {
	Distributed bool `json:"distributed"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
