package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const reportCacheTTL = 30 * time.Second

type Services struct {
	Orders        *services.OrderService
	Payments      *services.PaymentService
	Notifications *services.NotificationService
	Reports       *services.ReportService
	Reviews       *services.ReviewService
	Sellers       *services.SellerService
	Settings      *services.SettingsService
	Catalog       *services.CatalogService
}

type Handler struct {
	svc       Services
	rdb       *redis.Client
	jwtSecret string
}

// NewHandler wires the REST surface. rdb may be nil, in which case reports
// are not cached.
func NewHandler(svc Services, rdb *redis.Client, jwtSecret string) *Handler {
	return &Handler{svc: svc, rdb: rdb, jwtSecret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/sellers/register", h.RegisterSeller)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/reviews/product/:id", h.ListProductReviews)

	auth := r.Group("/", Authenticate(h.jwtSecret))

	auth.POST("/orders", h.CreateOrder)
	auth.GET("/orders", h.ListOrders)
	auth.GET("/orders/my", h.ListMyOrders)
	auth.GET("/orders/seller/all", h.ListSellerOrders)
	auth.PUT("/orders/item-status", h.UpdateItemStatus)
	auth.GET("/orders/:id", h.GetOrder)
	auth.PUT("/orders/:id/pay", h.PayOrder)
	auth.PUT("/orders/:id/status", h.UpdateOrderStatus)

	auth.POST("/payments/checkout", h.CreateCheckout)
	auth.POST("/payments/verify", h.VerifyPayment)

	auth.POST("/products", h.CreateProduct)
	auth.POST("/reviews", h.CreateReview)

	auth.GET("/notifications", h.ListNotifications)
	auth.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
	auth.PUT("/notifications/:id/read", h.MarkNotificationRead)
	auth.DELETE("/notifications", h.ClearNotifications)

	auth.GET("/admin/stats", h.GetStats)
	auth.GET("/admin/settings", h.GetSettings)
	auth.PUT("/admin/settings", h.UpdateSettings)
	auth.GET("/admin/sellers/pending", h.ListPendingSellers)
	auth.PUT("/admin/sellers/:id/approve", h.ApproveSeller)
}

func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// orders

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	in := services.PlaceOrderInput{
		ShippingAddress: domain.ShippingAddress{
			Name:       req.ShippingAddress.Name,
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			Phone:      req.ShippingAddress.Phone,
			PostalCode: req.ShippingAddress.PostalCode,
		},
		PaymentMethod: req.PaymentMethod,
	}
	for _, it := range req.OrderItems {
		in.Items = append(in.Items, services.PlaceOrderItem{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			Color:       it.Color,
			ColorCode:   it.ColorCode,
			Size:        it.Size,
			Weight:      it.Weight,
			VariationID: it.VariationID,
		})
	}

	order, err := h.svc.Orders.PlaceOrder(c.Request.Context(), principal(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	who := principal(c)
	var (
		views []services.OrderView
		err   error
	)
	if c.Query("view") == "all" {
		views, err = h.svc.Orders.ListAllOrders(c.Request.Context(), who)
	} else {
		views, err = h.svc.Orders.ListStoreOrders(c.Request.Context(), who)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) ListMyOrders(c *gin.Context) {
	orders, err := h.svc.Orders.ListMyOrders(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) ListSellerOrders(c *gin.Context) {
	views, err := h.svc.Orders.ListSellerOrders(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Orders.GetOrder(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PayOrder confirms payment by hand. Admins may confirm any order; owners
// only their own cash-on-delivery orders, since gateway payments are
// confirmed through /payments/verify.
func (h *Handler) PayOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	who := principal(c)
	ctx := c.Request.Context()

	order, err := h.svc.Orders.GetOrderById(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !who.IsAdmin() {
		if order.UserID != who.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only pay for your own orders"})
			return
		}
		if !order.PaysOnDelivery() {
			c.JSON(http.StatusForbidden, gin.H{"error": "this order is paid through the payment gateway"})
			return
		}
	}
	order, err = h.svc.Orders.ConfirmPayment(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.svc.Orders.UpdateOrderStatus(c.Request.Context(), principal(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateItemStatus(c *gin.Context) {
	var req UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	view, err := h.svc.Orders.UpdateItemStatus(c.Request.Context(), principal(c), req.OrderID, req.ProductID, req.ItemID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// payments

func (h *Handler) CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.svc.Payments.CreateCheckout(c.Request.Context(), principal(c), req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.svc.Payments.VerifySession(c.Request.Context(), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// catalog

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.svc.Catalog.CreateProduct(c.Request.Context(), principal(c), services.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Image:         req.Image,
		CategoryID:    req.CategoryID,
		Stock:         req.Stock,
		ColorVariants: req.ColorVariants,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// reviews

func (h *Handler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	review, err := h.svc.Reviews.Create(c.Request.Context(), principal(c), services.ReviewInput{
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handler) ListProductReviews(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reviews, err := h.svc.Reviews.ListByProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// notifications

func (h *Handler) ListNotifications(c *gin.Context) {
	list, unread, err := h.svc.Notifications.List(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unreadCount": unread})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.svc.Notifications.MarkAllRead(c.Request.Context(), principal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearNotifications(c *gin.Context) {
	if err := h.svc.Notifications.Clear(c.Request.Context(), principal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// admin

func (h *Handler) GetStats(c *gin.Context) {
	if !principal(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	pt := services.PeriodType(c.DefaultQuery("type", string(services.PeriodMonthly)))
	value := c.Query("date")
	if value == "" {
		now := time.Now()
		if pt == services.PeriodYearly {
			value = now.Format("2006")
		} else {
			value = now.Format("2006-01")
		}
	}

	cacheKey := "report:" + string(pt) + ":" + value
	ctx := c.Request.Context()
	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached services.Report
			if json.Unmarshal(b, &cached) == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	report, err := h.svc.Reports.BuildReport(ctx, pt, value)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.rdb != nil {
		data, _ := json.Marshal(report)
		if err := h.rdb.Set(context.Background(), cacheKey, data, reportCacheTTL).Err(); err != nil {
			zap.L().Warn("http: report cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetSettings(c *gin.Context) {
	if !principal(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	s, err := h.svc.Settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	s, err := h.svc.Settings.Update(c.Request.Context(), principal(c), services.SettingsInput{
		ShippingFee:           req.ShippingFee,
		FreeShippingThreshold: req.FreeShippingThreshold,
		FeePerAdditionalItem:  req.FeePerAdditionalItem,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) RegisterSeller(c *gin.Context) {
	var req RegisterSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	seller, err := h.svc.Sellers.Register(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, seller)
}

func (h *Handler) ListPendingSellers(c *gin.Context) {
	sellers, err := h.svc.Sellers.ListPending(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sellers)
}

func (h *Handler) ApproveSeller(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Sellers.Approve(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
