package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studentnest/internal/apperror"
	"studentnest/internal/lifecycle"
	"studentnest/internal/models"
)

const dateLayout = "2006-01-02"

type BookingPayload struct {
	CheckInDate           string `json:"check_in_date" binding:"required"`
	CheckOutDate          string `json:"check_out_date" binding:"required"`
	NumberOfOccupants     int    `json:"number_of_occupants"`
	StudentMessage        string `json:"student_message"`
	SpecialRequests       string `json:"special_requests"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
}

func (p BookingPayload) request() (lifecycle.BookingRequest, error) {
	checkIn, err := time.Parse(dateLayout, p.CheckInDate)
	if err != nil {
		return lifecycle.BookingRequest{}, apperror.Validation("check_in_date must be YYYY-MM-DD")
	}
	checkOut, err := time.Parse(dateLayout, p.CheckOutDate)
	if err != nil {
		return lifecycle.BookingRequest{}, apperror.Validation("check_out_date must be YYYY-MM-DD")
	}

	occupants := p.NumberOfOccupants
	if occupants == 0 {
		occupants = 1
	}

	return lifecycle.BookingRequest{
		CheckInDate:           checkIn,
		CheckOutDate:          checkOut,
		NumberOfOccupants:     occupants,
		StudentMessage:        p.StudentMessage,
		SpecialRequests:       p.SpecialRequests,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
	}, nil
}

func (h *Handler) CreateBooking(c *gin.Context) {
	propertyID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var payload BookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindValidation, err, "invalid request body"), "Invalid request body")
		return
	}
	req, err := payload.request()
	if err != nil {
		h.respondError(c, err, "Invalid request body")
		return
	}

	booking, err := h.lifecycle.CreateBooking(c.Request.Context(), actor(c), propertyID, req)
	if err != nil {
		h.respondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) ListBookings(c *gin.Context) {
	summary, err := h.lifecycle.ListBookings(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	view, err := h.lifecycle.GetBooking(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err, "Failed to get booking")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	booking, err := h.lifecycle.TransitionBooking(c.Request.Context(), actor(c), id, models.BookingStatus(c.Param("status")))
	if err != nil {
		h.respondError(c, err, "Failed to update booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *Handler) CreateInquiry(c *gin.Context) {
	propertyID, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var req lifecycle.InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindValidation, err, "invalid request body"), "Invalid request body")
		return
	}

	inquiry, err := h.lifecycle.CreateInquiry(c.Request.Context(), actor(c), propertyID, req)
	if err != nil {
		h.respondError(c, err, "Failed to create inquiry")
		return
	}

	c.JSON(http.StatusCreated, inquiry)
}

func (h *Handler) ListInquiries(c *gin.Context) {
	summary, err := h.lifecycle.ListInquiries(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, "Failed to list inquiries")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) UpdateInquiryStatus(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	inquiry, err := h.lifecycle.TransitionInquiry(c.Request.Context(), actor(c), id, models.InquiryStatus(c.Param("status")))
	if err != nil {
		h.respondError(c, err, "Failed to update inquiry")
		return
	}

	c.JSON(http.StatusOK, inquiry)
}
