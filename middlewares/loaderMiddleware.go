package middlewares

import (
	"context"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	CharacterLoader      *dataloader.Loader[int, *models.Character]
	ScenarioLoader       *dataloader.Loader[int, *models.Scenario]
	TeamLoader           *dataloader.Loader[int, *models.Team]
	RaidAttendanceLoader *dataloader.Loader[int, []*models.Attendance]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	characterReader := &characterReader{db: conn}
	scenarioReader := &scenarioReader{db: conn}
	teamReader := &teamReader{db: conn}
	raidAttendanceReader := &raidAttendanceReader{db: conn}

	return &Loaders{
		CharacterLoader:      dataloader.NewBatchedLoader(characterReader.getCharacters, dataloader.WithWait[int, *models.Character](time.Millisecond)),
		ScenarioLoader:       dataloader.NewBatchedLoader(scenarioReader.getScenarios, dataloader.WithWait[int, *models.Scenario](time.Millisecond)),
		TeamLoader:           dataloader.NewBatchedLoader(teamReader.getTeams, dataloader.WithWait[int, *models.Team](time.Millisecond)),
		RaidAttendanceLoader: dataloader.NewBatchedLoader(raidAttendanceReader.getAttendances, dataloader.WithWait[int, []*models.Attendance](time.Millisecond)),
	}
}

// LoaderMiddleware builds fresh loaders per request so nothing is cached across guilds.
func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results
// (T must be a struct)
func generateLoaderResults[T models.Data](results []T, ids []int) []*dataloader.Result[*T] {
	resultMap := make(map[int]T)
	var resultZero T
	resultMap[0] = resultZero.GetDefault(0).(T)
	for _, result := range results {
		resultMap[result.GetId()] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data := resultMap[id]
		if reflect.ValueOf(data).IsZero() {
			data = data.GetDefault(id).(T)
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: &data})
	}
	return loaderResults
}

// each id has many related results
func generateLoaderArrayResults[T models.RelatedData](results []T, referenceIds []int) []*dataloader.Result[[]*T] {
	resultMap := make(map[int][]*T)
	for _, result := range results {
		row := result
		resultMap[result.GetReferenceId()] = append(resultMap[result.GetReferenceId()], &row)
	}
	loaderResults := make([]*dataloader.Result[[]*T], 0, len(referenceIds))
	for _, id := range referenceIds {
		loaderResults = append(loaderResults, &dataloader.Result[[]*T]{Data: resultMap[id]})
	}
	return loaderResults
}
