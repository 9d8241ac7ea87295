package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saurabh-chakrabarthi/hermes/cache"
	"github.com/saurabh-chakrabarthi/hermes/services"
	"github.com/saurabh-chakrabarthi/hermes/store"
	"github.com/saurabh-chakrabarthi/hermes/websocket"
)

var validate = validator.New()

var (
	paymentService *services.PaymentService
	paymentStore   store.PaymentStore
	listCache      cache.Cache
)

// Init wires the shared service and backends before routes are mounted.
func Init(svc *services.PaymentService, st store.PaymentStore, c cache.Cache) {
	paymentService = svc
	paymentStore = st
	listCache = c
}

type CreatePaymentRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=100"`
	Email         string  `json:"email" validate:"required,email"`
	Amount        float64 `json:"amount" validate:"required,gt=0,lte=10000000"`
	School        string  `json:"school,omitempty"`
	StudentID     string  `json:"student_id,omitempty"`
	CountryFrom   string  `json:"country_from,omitempty"`
	SenderAddress string  `json:"sender_address,omitempty"`
	CurrencyFrom  string  `json:"currency_from,omitempty" validate:"omitempty,oneof=usd eur cad"`
}

func CreatePayment(c *fiber.Ctx) error {
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rawPayload := make([]byte, len(c.Body()))
	copy(rawPayload, c.Body())

	payment, err := paymentService.CreatePayment(c.Context(), services.CreatePaymentInput{
		Name:          req.Name,
		Email:         req.Email,
		Amount:        req.Amount,
		School:        req.School,
		StudentID:     req.StudentID,
		CountryFrom:   req.CountryFrom,
		SenderAddress: req.SenderAddress,
		CurrencyFrom:  req.CurrencyFrom,
		RawPayload:    rawPayload,
		UserAgent:     c.Get("User-Agent"),
		IPAddress:     c.IP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a positive number"})
		case errors.Is(err, store.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Duplicate payment record, please resubmit"})
		case errors.Is(err, store.ErrUnavailable):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment store unavailable"})
		default:
			log.Printf("🔥 Failed to create payment: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment"})
		}
	}

	select {
	case websocket.Broadcast <- payment:
	default:
	}

	return c.Status(fiber.StatusCreated).JSON(payment)
}

func ListPayments(c *fiber.Ctx) error {
	payments, err := paymentService.ListPayments(c.Context())
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment store unavailable"})
		}
		log.Printf("🔥 Failed to list payments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}
	return c.JSON(payments)
}

func GetPaymentReceipt(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	payment, err := paymentService.GetPayment(c.Context(), paymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payment"})
	}

	pdfBytes, err := services.GenerateReceiptPDF(payment)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF for %s: %v", payment.Reference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate receipt"})
	}

	go services.ArchiveReceipt(pdfBytes, payment)

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", "attachment; filename="+payment.Reference+".pdf")
	return c.Send(pdfBytes)
}
