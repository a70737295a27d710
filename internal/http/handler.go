package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/auth"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/http/middleware"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/service"
)

type Handler struct {
	contracts   *service.ContractService
	reports     *service.ReportService
	permissions auth.Oracle
	log         zerolog.Logger
}

func NewHandler(
	contracts *service.ContractService,
	reports *service.ReportService,
	permissions auth.Oracle,
	log zerolog.Logger,
) *Handler {
	return &Handler{contracts: contracts, reports: reports, permissions: permissions, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/contracts", h.createContract)
	protected.POST("/contracts/preview", h.previewCost)
	protected.GET("/contracts", h.searchContracts)
	protected.GET("/contracts/stats", h.contractStats)
	protected.GET("/contracts/expiring", h.expiringContracts)
	protected.GET("/contracts/export", h.exportContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/:id/invoices", h.contractInvoices)
	protected.POST("/contracts/:id/approve", h.approveContract)
	protected.POST("/contracts/:id/cancel", h.cancelContract)
	protected.POST("/contracts/:id/renew", h.renewContract)
}

type contractTermsRequest struct {
	ClientID       uint   `json:"client_id" binding:"required"`
	WorkerID       uint   `json:"worker_id" binding:"required"`
	ContractType   string `json:"contract_type" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	DurationMonths int    `json:"duration_months" binding:"required"`
	ProbationDays  int    `json:"probation_days"`
	NoticeDays     int    `json:"notice_days"`

	BasicSalary             float64 `json:"basic_salary" binding:"required"`
	Currency                string  `json:"currency"`
	AccommodationAllowance  float64 `json:"accommodation_allowance"`
	FoodAllowance           float64 `json:"food_allowance"`
	TransportationAllowance float64 `json:"transportation_allowance"`
	CommunicationAllowance  float64 `json:"communication_allowance"`
	MedicalInsurance        bool    `json:"medical_insurance"`
	AnnualTicket            bool    `json:"annual_ticket"`
	EndOfServiceBenefit     bool    `json:"end_of_service_benefit"`

	JobDescription    string `json:"job_description"`
	SpecialConditions string `json:"special_conditions"`
	TermsText         string `json:"terms_text"`
}

func (r contractTermsRequest) toTerms() (service.ContractTerms, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return service.ContractTerms{}, err
	}
	return service.ContractTerms{
		ClientID:       r.ClientID,
		WorkerID:       r.WorkerID,
		ContractType:   model.ContractType(strings.ToUpper(strings.TrimSpace(r.ContractType))),
		StartDate:      start,
		DurationMonths: r.DurationMonths,
		ProbationDays:  r.ProbationDays,
		NoticeDays:     r.NoticeDays,

		BasicSalary:             r.BasicSalary,
		Currency:                r.Currency,
		AccommodationAllowance:  r.AccommodationAllowance,
		FoodAllowance:           r.FoodAllowance,
		TransportationAllowance: r.TransportationAllowance,
		CommunicationAllowance:  r.CommunicationAllowance,
		MedicalInsurance:        r.MedicalInsurance,
		AnnualTicket:            r.AnnualTicket,
		EndOfServiceBenefit:     r.EndOfServiceBenefit,

		JobDescription:    r.JobDescription,
		SpecialConditions: r.SpecialConditions,
		TermsText:         r.TermsText,
	}, nil
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := h.authorize(c, auth.ScreenContracts, auth.ActionCreate)
	if !ok {
		return
	}

	var req contractTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	terms, err := req.toTerms()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}

	result, err := h.contracts.Create(c.Request.Context(), terms, principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, operationResponse(result))
}

func (h *Handler) previewCost(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ScreenContracts, auth.ActionView); !ok {
		return
	}

	var req contractTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	terms, err := req.toTerms()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}

	breakdown := h.contracts.PreviewCost(terms)
	c.JSON(http.StatusOK, gin.H{
		"monthly_client_fee":  breakdown.MonthlyClientFee,
		"annual_contract_fee": breakdown.AnnualContractFee,
		"subtotal":            breakdown.Subtotal,
		"vat_amount":          breakdown.VATAmount,
		"total":               breakdown.Total,
	})
}

func (h *Handler) getContract(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ScreenContracts, auth.ActionView); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

func (h *Handler) contractInvoices(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ScreenContracts, auth.ActionView); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	invoices, err := h.contracts.Invoices(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *Handler) approveContract(c *gin.Context) {
	principal, ok := h.authorize(c, auth.ScreenContracts, auth.ActionApprove)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.contracts.Approve(c.Request.Context(), id, principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, operationResponse(result))
}

type cancelContractRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) cancelContract(c *gin.Context) {
	principal, ok := h.authorize(c, auth.ScreenContracts, auth.ActionCancel)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req cancelContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contracts.Cancel(c.Request.Context(), id, req.Reason, principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, operationResponse(result))
}

type renewContractRequest struct {
	StartDate      string   `json:"start_date" binding:"required"`
	DurationMonths *int     `json:"duration_months"`
	ContractType   *string  `json:"contract_type"`
	BasicSalary    *float64 `json:"basic_salary"`
	ProbationDays  *int     `json:"probation_days"`
	NoticeDays     *int     `json:"notice_days"`

	AccommodationAllowance  *float64 `json:"accommodation_allowance"`
	FoodAllowance           *float64 `json:"food_allowance"`
	TransportationAllowance *float64 `json:"transportation_allowance"`
	CommunicationAllowance  *float64 `json:"communication_allowance"`
	MedicalInsurance        *bool    `json:"medical_insurance"`
	AnnualTicket            *bool    `json:"annual_ticket"`
	EndOfServiceBenefit     *bool    `json:"end_of_service_benefit"`
}

func (h *Handler) renewContract(c *gin.Context) {
	principal, ok := h.authorize(c, auth.ScreenContracts, auth.ActionRenew)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req renewContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}

	renewal := service.RenewalTerms{
		StartDate:      start,
		DurationMonths: req.DurationMonths,
		BasicSalary:    req.BasicSalary,
		ProbationDays:  req.ProbationDays,
		NoticeDays:     req.NoticeDays,

		AccommodationAllowance:  req.AccommodationAllowance,
		FoodAllowance:           req.FoodAllowance,
		TransportationAllowance: req.TransportationAllowance,
		CommunicationAllowance:  req.CommunicationAllowance,
		MedicalInsurance:        req.MedicalInsurance,
		AnnualTicket:            req.AnnualTicket,
		EndOfServiceBenefit:     req.EndOfServiceBenefit,
	}
	if req.ContractType != nil {
		contractType := model.ContractType(strings.ToUpper(strings.TrimSpace(*req.ContractType)))
		renewal.ContractType = &contractType
	}

	result, err := h.contracts.Renew(c.Request.Context(), id, renewal, principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, operationResponse(result))
}

func (h *Handler) searchContracts(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ScreenReports, auth.ActionView); !ok {
		return
	}

	filter, ok := searchFilter(c)
	if !ok {
		return
	}
	result, err := h.reports.Search(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":      result.Rows,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

func (h *Handler) contractStats(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ScreenReports, auth.ActionView); !ok {
		return
	}

	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":           stats.Total,
		"by_status":       stats.ByStatus,
		"active_value":    stats.ActiveValue,
		"expiring_in_30d": stats.ExpiringIn30d,
	})
}

func (h *Handler) expiringContracts(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ScreenReports, auth.ActionView); !ok {
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		days = parsed
	}

	rows, err := h.reports.Expiring(c.Request.Context(), days)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (h *Handler) exportContracts(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ScreenReports, auth.ActionExport); !ok {
		return
	}

	filter, ok := searchFilter(c)
	if !ok {
		return
	}
	result, err := h.reports.Export(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) authorize(c *gin.Context, screen, action string) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return model.Principal{}, false
	}
	if !h.permissions.Can(principal, screen, action) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return model.Principal{}, false
	}
	return principal, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "validation failed",
			"violations": validationErr.Violations,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("contract operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func operationResponse(result *service.OperationResult) gin.H {
	response := gin.H{"contract": result.Contract}
	if result.Invoice != nil {
		response["invoice"] = result.Invoice
	}
	if len(result.Warnings) > 0 {
		response["warnings"] = result.Warnings
	}
	return response
}

func searchFilter(c *gin.Context) (model.ContractSearchFilter, bool) {
	filter := model.ContractSearchFilter{Query: c.Query("search")}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.ContractStatus(strings.ToUpper(raw))
		filter.Status = &status
	}
	for query, target := range map[string]**uint{
		"client_id": &filter.ClientID,
		"worker_id": &filter.WorkerID,
	} {
		raw := c.Query(query)
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + query})
			return model.ContractSearchFilter{}, false
		}
		id := uint(parsed)
		*target = &id
	}

	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			filter.Page = parsed
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			filter.PageSize = parsed
		}
	}
	return filter, true
}

func pathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return 0, false
	}
	return uint(parsed), true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}
