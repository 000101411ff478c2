package httpapi

import (
	"time"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/service/booking"
)

const dateLayout = time.DateOnly

type timeSlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type busyDateResponse struct {
	Date      string             `json:"date"`
	IsFullDay bool               `json:"isFullDay"`
	TimeSlots []timeSlotResponse `json:"timeSlots"`
}

func toBusyDateResponses(in []domain.BusyDate) []busyDateResponse {
	out := make([]busyDateResponse, 0, len(in))
	for _, bd := range in {
		slots := make([]timeSlotResponse, 0, len(bd.TimeSlots))
		if !bd.IsFullDay {
			for _, s := range bd.TimeSlots {
				slots = append(slots, timeSlotResponse{Start: s.Start, End: s.End})
			}
		}
		out = append(out, busyDateResponse{
			Date:      bd.Date.Format(dateLayout),
			IsFullDay: bd.IsFullDay,
			TimeSlots: slots,
		})
	}
	return out
}

type slotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type bookingRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	Email           string `json:"email" validate:"omitempty,email,max=320"`
	Phone           string `json:"phone" validate:"omitempty,max=40"`
	Service         string `json:"service" validate:"required,max=100"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"omitempty,max=5"`
	AllDay          bool   `json:"allDay"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,min=15,max=480"`
	Notes           string `json:"notes" validate:"max=2000"`
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	ClientName  string    `json:"clientName" validate:"max=200"`
	ClientEmail string    `json:"clientEmail" validate:"omitempty,email,max=320"`
	ClientPhone string    `json:"clientPhone" validate:"max=40"`
	Category    string    `json:"category" validate:"max=100"`
	Notes       string    `json:"notes" validate:"max=2000"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay"`
	Status      string    `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

func (r eventRequest) toInput() booking.EventInput {
	return booking.EventInput{
		Title:       r.Title,
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		ClientPhone: r.ClientPhone,
		Category:    r.Category,
		Notes:       r.Notes,
		StartTime:   r.Start,
		EndTime:     r.End,
		AllDay:      r.AllDay,
		Status:      r.Status,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ClientName  string    `json:"clientName"`
	ClientEmail string    `json:"clientEmail,omitempty"`
	ClientPhone string    `json:"clientPhone,omitempty"`
	Category    string    `json:"category,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toEventResponse(ev domain.Event) eventResponse {
	return eventResponse{
		ID:          ev.ID.String(),
		Title:       ev.Title,
		ClientName:  ev.ClientName,
		ClientEmail: ev.ClientEmail,
		ClientPhone: ev.ClientPhone,
		Category:    ev.Category,
		Notes:       ev.Notes,
		Start:       ev.StartTime,
		End:         ev.EndTime,
		AllDay:      ev.AllDay,
		Status:      string(ev.Status),
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
}

// bookingResponse is what the public site sees after booking: no audit fields.
type bookingResponse struct {
	ID     string    `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"allDay"`
	Status string    `json:"status"`
}

func toBookingResponse(ev domain.Event) bookingResponse {
	return bookingResponse{
		ID:     ev.ID.String(),
		Start:  ev.StartTime,
		End:    ev.EndTime,
		AllDay: ev.AllDay,
		Status: string(ev.Status),
	}
}

type closureRequest struct {
	Title    string     `json:"title" validate:"required,max=200"`
	TimeZone string     `json:"timeZone" validate:"max=64"`
	Start    time.Time  `json:"start" validate:"required"`
	End      time.Time  `json:"end"`
	AllDay   bool       `json:"allDay"`
	Interval int        `json:"interval" validate:"min=0,max=52"`
	Weekdays []int16    `json:"weekdays" validate:"max=7,dive,min=1,max=7"`
	Until    *time.Time `json:"until"`
	Count    *int       `json:"count" validate:"omitempty,min=1,max=1000"`
}

func (r closureRequest) toInput() booking.ClosureInput {
	return booking.ClosureInput{
		Title:     r.Title,
		TimeZone:  r.TimeZone,
		StartTime: r.Start,
		EndTime:   r.End,
		AllDay:    r.AllDay,
		Interval:  r.Interval,
		ByWeekday: r.Weekdays,
		Until:     r.Until,
		Count:     r.Count,
	}
}

type closureResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	TimeZone        string     `json:"timeZone"`
	Start           time.Time  `json:"start"`
	DurationMinutes int        `json:"durationMinutes"`
	AllDay          bool       `json:"allDay"`
	Interval        int        `json:"interval"`
	Weekdays        []int16    `json:"weekdays"`
	Until           *time.Time `json:"until,omitempty"`
	Count           *int       `json:"count,omitempty"`
}

func toClosureResponse(s domain.ClosureSeries) closureResponse {
	return closureResponse{
		ID:              s.ID.String(),
		Title:           s.Title,
		TimeZone:        s.Timezone,
		Start:           s.DTStart,
		DurationMinutes: s.DurationSeconds / 60,
		AllDay:          s.AllDay,
		Interval:        s.Interval,
		Weekdays:        s.ByWeekday,
		Until:           s.Until,
		Count:           s.Count,
	}
}

type serviceRequest struct {
	Slug            string `json:"slug" validate:"required,max=100"`
	Name            string `json:"name" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=5000"`
	PriceCents      int64  `json:"priceCents" validate:"min=0"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=1,max=1440"`
	Active          bool   `json:"active"`
	Position        int    `json:"position" validate:"min=0"`
}

func (r serviceRequest) toDomain() domain.Service {
	return domain.Service{
		Slug:            r.Slug,
		Name:            r.Name,
		Description:     r.Description,
		PriceCents:      r.PriceCents,
		DurationMinutes: r.DurationMinutes,
		Active:          r.Active,
		Position:        r.Position,
	}
}

type serviceResponse struct {
	ID              string `json:"id"`
	Slug            string `json:"slug"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"priceCents"`
	DurationMinutes int    `json:"durationMinutes"`
	Active          bool   `json:"active"`
	Position        int    `json:"position"`
}

func toServiceResponse(s domain.Service) serviceResponse {
	return serviceResponse{
		ID:              s.ID.String(),
		Slug:            s.Slug,
		Name:            s.Name,
		Description:     s.Description,
		PriceCents:      s.PriceCents,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
		Position:        s.Position,
	}
}

type fabricRequest struct {
	Name               string `json:"name" validate:"required,max=200"`
	Composition        string `json:"composition" validate:"max=500"`
	Color              string `json:"color" validate:"max=100"`
	PricePerMeterCents int64  `json:"pricePerMeterCents" validate:"min=0"`
	InStock            bool   `json:"inStock"`
	ImageURL           string `json:"imageUrl" validate:"max=2000"`
}

func (r fabricRequest) toDomain() domain.Fabric {
	return domain.Fabric{
		Name:               r.Name,
		Composition:        r.Composition,
		Color:              r.Color,
		PricePerMeterCents: r.PricePerMeterCents,
		InStock:            r.InStock,
		ImageURL:           r.ImageURL,
	}
}

type fabricResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Composition        string `json:"composition"`
	Color              string `json:"color"`
	PricePerMeterCents int64  `json:"pricePerMeterCents"`
	InStock            bool   `json:"inStock"`
	ImageURL           string `json:"imageUrl,omitempty"`
}

func toFabricResponse(f domain.Fabric) fabricResponse {
	return fabricResponse{
		ID:                 f.ID.String(),
		Name:               f.Name,
		Composition:        f.Composition,
		Color:              f.Color,
		PricePerMeterCents: f.PricePerMeterCents,
		InStock:            f.InStock,
		ImageURL:           f.ImageURL,
	}
}

type teamMemberRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Role     string `json:"role" validate:"required,max=200"`
	Bio      string `json:"bio" validate:"max=5000"`
	PhotoURL string `json:"photoUrl" validate:"max=2000"`
	Position int    `json:"position" validate:"min=0"`
}

func (r teamMemberRequest) toDomain() domain.TeamMember {
	return domain.TeamMember{
		Name:     r.Name,
		Role:     r.Role,
		Bio:      r.Bio,
		PhotoURL: r.PhotoURL,
		Position: r.Position,
	}
}

type teamMemberResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Position int    `json:"position"`
}

func toTeamMemberResponse(m domain.TeamMember) teamMemberResponse {
	return teamMemberResponse{
		ID:       m.ID.String(),
		Name:     m.Name,
		Role:     m.Role,
		Bio:      m.Bio,
		PhotoURL: m.PhotoURL,
		Position: m.Position,
	}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Phone   string `json:"phone" validate:"max=40"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type contactResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Message   string     `json:"message"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toContactResponse(m domain.ContactMessage) contactResponse {
	return contactResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Message:   m.Message,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=320"`
	Password string `json:"password" validate:"required,max=200"`
}

type meResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// mapSlice converts every element with fn; the result is never nil so lists
// encode as [] rather than null.
func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
