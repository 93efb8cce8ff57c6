package http

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"storefront/internal/payment"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	apiKeyHeader    = "X-API-Key"
	expiredLinkPath = "/download/expired"
)

type Handler struct {
	orders   *services.OrderService
	payments *services.PaymentService
	tokens   *services.TokenService
	filesDir string
}

func NewHandler(orders *services.OrderService, payments *services.PaymentService, tokens *services.TokenService, filesDir string) *Handler {
	return &Handler{orders: orders, payments: payments, tokens: tokens, filesDir: filesDir}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:invoice", h.GetOrder)
	api.POST("/webhook/payment", h.PaymentWebhook)
	api.POST("/recover", h.RecoverDownload)

	r.GET(expiredLinkPath, h.DownloadExpired)
	r.GET("/download/:token", h.Download)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), services.CheckoutRequest{
		ProductID: req.ProductID,
		Email:     req.Email,
		Phone:     req.Phone,
		Chat:      req.Chat,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateOrderResponse{
		InvoiceNumber: order.InvoiceNumber,
		ProductName:   order.ProductName,
		TotalAmount:   order.TotalAmount,
		UniqueCode:    order.UniqueCode,
		QRISString:    order.QRISString,
		Status:        string(order.Status),
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("invoice"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrderStatusResponse{
		InvoiceNumber: order.InvoiceNumber,
		ProductName:   order.ProductName,
		TotalAmount:   order.TotalAmount,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
		PaidAt:        order.PaidAt,
	})
}

// PaymentWebhook receives notifications forwarded from the merchant's payment
// app. Anything that authenticates and parses gets a 200, matched or not.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	eventID := uuid.NewString()

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if err := h.payments.Authenticate(ctx, c.GetHeader(apiKeyHeader)); err != nil {
		log.Printf("Webhook %s rejected from %s: %v, payload: %s", eventID, c.ClientIP(), err, body)
		writeError(c, err)
		return
	}

	n, err := payment.ParseNotification(body)
	if err != nil {
		log.Printf("Webhook %s: unparseable payload: %v", eventID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	res, err := h.payments.HandleNotification(ctx, n)
	if err != nil {
		// Only store failures land here. Answering 500 instead of an
		// acknowledgment lets the payment app redeliver the notification.
		log.Printf("Webhook %s failed: %v", eventID, err)
		writeError(c, err)
		return
	}
	log.Printf("Webhook %s: %s", eventID, res.Message)

	c.JSON(http.StatusOK, WebhookResponse{
		Status:        "success",
		Message:       res.Message,
		InvoiceNumber: res.InvoiceNumber,
	})
}

func (h *Handler) Download(c *gin.Context) {
	dl, err := h.tokens.Redeem(c.Request.Context(), c.Param("token"))
	if errors.Is(err, services.ErrTokenExpired) {
		c.Redirect(http.StatusFound, expiredLinkPath)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	if dl.ExternalLink != "" {
		h.tokens.RecordDownload(ctx, dl)
		c.Redirect(http.StatusFound, dl.ExternalLink)
		return
	}

	path, ok := h.resolveFile(dl.FilePath)
	if !ok {
		log.Printf("Download for %s: file %q not found", dl.Order.InvoiceNumber, dl.FilePath)
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	h.tokens.RecordDownload(ctx, dl)
	c.FileAttachment(path, attachmentName(dl.FileName, path))
}

func (h *Handler) DownloadExpired(c *gin.Context) {
	c.String(http.StatusGone, "This download link is invalid or has expired. Use the recovery form with your invoice number to get a new one.")
}

func (h *Handler) RecoverDownload(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	tok, err := h.tokens.Recover(ctx, services.RecoverRequest{
		InvoiceNumber: req.InvoiceNumber,
		Email:         req.Email,
		Phone:         req.Phone,
		Chat:          req.Chat,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RecoverResponse{
		InvoiceNumber: tok.InvoiceNumber,
		DownloadURL:   h.tokens.DownloadLink(ctx, tok),
		ExpiresAt:     tok.ExpiresAt,
	})
}

// resolveFile keeps product files inside filesDir.
func (h *Handler) resolveFile(rel string) (string, bool) {
	if rel == "" {
		return "", false
	}
	root, err := filepath.Abs(h.filesDir)
	if err != nil {
		return "", false
	}
	clean := filepath.Clean(strings.TrimPrefix(filepath.ToSlash(rel), "/"))
	path := filepath.Join(root, clean)
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", false
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func attachmentName(productName, path string) string {
	ext := filepath.Ext(path)
	name := strings.TrimSpace(productName)
	if name == "" {
		return filepath.Base(path)
	}
	return name + ext
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrWebhookKeyMissing):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrUniqueCodeExhausted):
		status = http.StatusConflict
	case errors.Is(err, services.ErrContactRequired),
		errors.Is(err, services.ErrInvalidEmail):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrTokenForbidden),
		errors.Is(err, services.ErrContactMismatch),
		errors.Is(err, services.ErrOrderNotPaid):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
