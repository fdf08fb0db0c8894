package v1

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/service"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/metrics"
)

type SchedulingHandler struct {
	svc       *service.SchedulingService
	collector *metrics.Collector
}

func NewSchedulingHandler(svc *service.SchedulingService, collector *metrics.Collector) *SchedulingHandler {
	return &SchedulingHandler{svc: svc, collector: collector}
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, service.ErrSlotUnavailable):
		return "conflict"
	case errors.Is(err, service.ErrDailyCapacityExceeded),
		errors.Is(err, service.ErrDoctorUnavailable),
		errors.Is(err, appointment.ErrScheduledInPast):
		return "rejected"
	default:
		return "error"
	}
}

type bookRequest struct {
	DoctorID  uuid.UUID          `json:"doctor_id" binding:"required"`
	PatientID uuid.UUID          `json:"patient_id" binding:"required"`
	Date      schedule.Date      `json:"date" binding:"required"`
	Time      schedule.TimeOfDay `json:"time"`
}

func (h *SchedulingHandler) Book(c *gin.Context) {
	if _, ok := identityFrom(c); !ok {
		return
	}
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.BookSlot(c.Request.Context(), appointment.BookCommand{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      req.Date,
		Time:      req.Time,
	})
	h.collector.BookingsTotal.WithLabelValues(bookingOutcome(err)).Inc()
	if err != nil {
		if errors.Is(err, service.ErrSlotUnavailable) {
			h.collector.SlotConflictsTotal.Inc()
		}
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *SchedulingHandler) ListSlots(c *gin.Context) {
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	listing, err := h.svc.ListAvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, listing)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *SchedulingHandler) Cancel(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req cancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	if err := h.svc.CancelAppointment(c.Request.Context(), id, requester, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	h.collector.CancellationsTotal.Inc()
	respondOK(c, gin.H{"status": string(appointment.StatusCancelled)})
}

func (h *SchedulingHandler) Complete(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.CompleteAppointment(c.Request.Context(), id, requester); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"status": string(appointment.StatusCompleted)})
}

type rescheduleRequest struct {
	NewDate schedule.Date      `json:"new_date" binding:"required"`
	NewTime schedule.TimeOfDay `json:"new_time"`
}

func (h *SchedulingHandler) Reschedule(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.RescheduleAppointment(c.Request.Context(), id, requester, appointment.RescheduleCommand{
		NewDate: req.NewDate,
		NewTime: req.NewTime,
	})
	if err != nil {
		if errors.Is(err, service.ErrSlotUnavailable) {
			h.collector.SlotConflictsTotal.Inc()
		}
		respondServiceError(c, err)
		return
	}
	h.collector.ReschedulesTotal.Inc()
	respondOK(c, a)
}

func (h *SchedulingHandler) Get(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.GetAppointment(c.Request.Context(), id, requester)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *SchedulingHandler) List(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}

	q := &appointment.ListQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := appointment.Status(raw)
		if !status.IsValid() {
			respondError(c, 400, "invalid status filter")
			return
		}
		q.Status = &status
	}
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, 400, "invalid doctor_id filter")
			return
		}
		q.DoctorID = &id
	}
	if raw := c.Query("from"); raw != "" {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			respondError(c, 400, "invalid from date: expected YYYY-MM-DD")
			return
		}
		q.DateFrom = &d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			respondError(c, 400, "invalid to date: expected YYYY-MM-DD")
			return
		}
		q.DateTo = &d
	}

	page, err := h.svc.ListAppointments(c.Request.Context(), q, requester)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *SchedulingHandler) Upcoming(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}

	appts, err := h.svc.GetUpcoming(c.Request.Context(), parseQueryInt(c, "within_hours", 24), requester)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}
