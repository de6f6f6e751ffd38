package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NewUsersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_new_users_total",
		Help: "Total number of new user registrations.",
	})
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_login_attempts_total",
		Help: "Total number of login attempts (successful and failed).",
	}, []string{"status"}) // status: "success" or "failed"

	PromptCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_prompt_created_total",
		Help: "Total number of prompts created.",
	})
	ToolCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_tool_created_total",
		Help: "Total number of tools created.",
	})
	RatingSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_rating_submitted_total",
		Help: "Total number of ratings submitted.",
	}, []string{"record"}) // record: "prompt" or "tool"
	PromptEnhancedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_prompt_enhanced_total",
		Help: "Total number of LLM prompt enhancements generated.",
	})
	CategoryRebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_category_rebuilds_total",
		Help: "Total number of category index rebuilds.",
	})
)
