package jobs

import (
	"context"
	"log"
	"time"

	"github.com/saurabh-chakrabarthi/hermes/services"
)

var paymentService *services.PaymentService

func Init(svc *services.PaymentService) {
	paymentService = svc
}

// WarmPaymentListCache rebuilds the cached payment list so dashboard
// reads rarely land on a cold cache. Runs on a cron schedule; failures
// only log since the read path falls back to the store anyway.
func WarmPaymentListCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := paymentService.RefreshListCache(ctx); err != nil {
		log.Printf("⚠️ Cache warm job failed: %v", err)
		return
	}
	log.Println("✅ Payment list cache refreshed")
}
