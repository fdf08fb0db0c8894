package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/service"
)

type AvailabilityHandler struct {
	svc *service.AvailabilityService
}

func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func (h *AvailabilityHandler) Get(c *gin.Context) {
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Get(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

// EnsureDefaults provisions the stock weekday schedule for a doctor that
// has none yet. Idempotent.
func (h *AvailabilityHandler) EnsureDefaults(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if !requester.IsAdmin() && !requester.ActsForDoctor(doctorID) {
		respondServiceError(c, service.ErrForbidden)
		return
	}

	a, err := h.svc.EnsureForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type setTemplateRequest struct {
	WeeklyTemplate schedule.WeeklyTemplate `json:"weekly_template" binding:"required"`
}

func (h *AvailabilityHandler) SetWeeklyTemplate(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req setTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.SetWeeklyTemplate(c.Request.Context(), doctorID, requester, req.WeeklyTemplate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type setDayRequest struct {
	Day      int                  `json:"day"` // 0 = Sunday, per time.Weekday
	Schedule schedule.DaySchedule `json:"schedule"`
}

func (h *AvailabilityHandler) SetDaySchedule(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req setDayRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Day < 0 || req.Day > 6 {
		respondError(c, http.StatusBadRequest, "day must be between 0 (Sunday) and 6 (Saturday)")
		return
	}

	a, err := h.svc.SetDaySchedule(c.Request.Context(), doctorID, requester, time.Weekday(req.Day), req.Schedule)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type setSlotDurationRequest struct {
	Minutes int `json:"minutes" binding:"required"`
}

func (h *AvailabilityHandler) SetSlotDuration(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req setSlotDurationRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.SetSlotDuration(c.Request.Context(), doctorID, requester, req.Minutes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type setDailyCapRequest struct {
	MaxPatientsPerDay int `json:"max_patients_per_day"`
}

func (h *AvailabilityHandler) SetMaxPatientsPerDay(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req setDailyCapRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.SetMaxPatientsPerDay(c.Request.Context(), doctorID, requester, req.MaxPatientsPerDay)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AvailabilityHandler) AddBlockedInterval(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req schedule.BlockedInterval
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.AddBlockedInterval(c.Request.Context(), doctorID, requester, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

type removeBlockRequest struct {
	Date  schedule.Date      `json:"date" binding:"required"`
	Start schedule.TimeOfDay `json:"start"`
}

func (h *AvailabilityHandler) RemoveBlockedInterval(c *gin.Context) {
	requester, ok := identityFrom(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req removeBlockRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.RemoveBlockedInterval(c.Request.Context(), doctorID, requester, req.Date, req.Start)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}
