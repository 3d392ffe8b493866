package api

import (
	"github.com/feedloop/feedloop/app/database"
	"github.com/feedloop/feedloop/app/feed"
	"github.com/feedloop/feedloop/app/tasks"
)

type Handler struct {
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository
	ruleApplier *feed.RuleApplier
	scheduler   tasks.TaskSchedulerInterface
}
