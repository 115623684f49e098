package router

import (
	"github.com/byteledger/backend/internal/interfaces/http/handler"
)

// DocumentRoutes groups the estimate, sale, payment and rendering endpoints
func DocumentRoutes(billing *handler.BillingHandler, documents *handler.DocumentHandler) *DomainGroup {
	g := NewDomainGroup("documents", "/documents")
	g.POST("", billing.CreateDocument).
		GET("", billing.ListDocuments).
		GET("/:id", billing.GetDocument).
		PUT("/:id/items", billing.UpdateItems).
		PUT("/:id/pricing", billing.UpdatePricing).
		POST("/:id/send", billing.SendEstimate).
		POST("/:id/approve", billing.ApproveEstimate).
		POST("/:id/convert", billing.ConvertEstimate).
		POST("/:id/payments", billing.RecordPayment).
		GET("/:id/ledger", billing.GetLedger)

	if documents != nil {
		g.POST("/:id/render", documents.RenderDocument).
			GET("/:id/preview", documents.PreviewDocument)
	}
	return g
}

// QuoteRoutes groups stateless calculator endpoints
func QuoteRoutes(billing *handler.BillingHandler) *DomainGroup {
	return NewDomainGroup("quotes", "/quotes").
		POST("/totals", billing.QuoteTotals)
}

// CustomerRoutes groups the customer directory endpoints
func CustomerRoutes(customers *handler.CustomerHandler) *DomainGroup {
	return NewDomainGroup("customers", "/customers").
		POST("", customers.Create).
		GET("", customers.List).
		GET("/:id", customers.GetByID)
}
