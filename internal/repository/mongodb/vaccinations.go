package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// ListVaccinations returns matching records ordered by goat, vaccine type and scheduled date.
func (r *MongoDBRepository) ListVaccinations(ctx context.Context, filter repository.VaccinationFilter) ([]models.VaccinationEvent, error) {
	query := bson.M{}
	if filter.GoatID != 0 {
		query["goat_id"] = filter.GoatID
	}
	if filter.VaccineTypeID != 0 {
		query["vaccine_type_id"] = filter.VaccineTypeID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	var out []models.VaccinationEvent
	sort := bson.D{{Key: "goat_id", Value: 1}, {Key: "vaccine_type_id", Value: 1}, {Key: "scheduled_date", Value: 1}}
	if err := r.findAll(ctx, collVaccinations, query, sort, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertVaccination writes a record keyed by (goat, vaccine type, scheduled date).
func (r *MongoDBRepository) UpsertVaccination(ctx context.Context, event *models.VaccinationEvent) error {
	id, err := r.nextID(ctx, collVaccinations)
	if err != nil {
		return err
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now().UTC()
	}

	var saved models.VaccinationEvent
	err = r.upsertReturning(ctx, collVaccinations,
		vaccinationKey(event),
		bson.M{
			"$set": bson.M{
				"actual_date_given": dayPtr(event.GivenOn),
				"status":            event.Status,
				"notes":             event.Notes,
				"batch_number":      event.BatchNumber,
				"given_by":          event.GivenBy,
			},
			"$setOnInsert": bson.M{
				"_id":        id,
				"created_by": event.CreatedBy,
				"created_at": event.CreatedAt,
			},
		},
		&saved)
	if err != nil {
		return fmt.Errorf("upsert vaccination for goat %d: %w", event.GoatID, err)
	}
	event.ID = saved.ID
	return nil
}

// RescheduleVaccination moves a pending dose in one transaction.
// Transactions require a replica set deployment.
func (r *MongoDBRepository) RescheduleVaccination(ctx context.Context, from *time.Time, event *models.VaccinationEvent) error {
	id, err := r.nextID(ctx, collVaccinations)
	if err != nil {
		return err
	}
	event.ID = id
	event.ScheduledDate = dates.Day(event.ScheduledDate)
	event.Status = models.VaccinationScheduled
	event.GivenOn = nil
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now().UTC()
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	coll := r.db.Collection(collVaccinations)
	pending := bson.M{
		"goat_id":         event.GoatID,
		"vaccine_type_id": event.VaccineTypeID,
		"status":          models.VaccinationScheduled,
	}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var existing models.VaccinationEvent
		err := coll.FindOne(sc, vaccinationKey(event)).Decode(&existing)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
		case err != nil:
			return nil, fmt.Errorf("check target date: %w", err)
		case existing.IsDone():
			return nil, repository.ErrAlreadyDone
		}

		if from != nil {
			filter := bson.M{"scheduled_date": dates.Day(*from)}
			for k, v := range pending {
				filter[k] = v
			}
			res, err := coll.DeleteOne(sc, filter)
			if err != nil {
				return nil, fmt.Errorf("drop previous schedule: %w", err)
			}
			if res.DeletedCount == 0 {
				return nil, repository.ErrConflict
			}
		} else {
			n, err := coll.CountDocuments(sc, pending)
			if err != nil {
				return nil, fmt.Errorf("count pending schedules: %w", err)
			}
			if n > 0 {
				return nil, repository.ErrConflict
			}
		}

		if _, err := coll.InsertOne(sc, event); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, repository.ErrConflict
			}
			return nil, fmt.Errorf("insert new schedule: %w", err)
		}

		r.logger.Debug("vaccination rescheduled",
			zap.Int64("goat_id", event.GoatID),
			zap.Int64("vaccine_type_id", event.VaccineTypeID),
			zap.String("from", dates.FormatOptional(from)),
			zap.String("scheduled_date", dates.Format(event.ScheduledDate)))
		return nil, nil
	})
	return err
}

func vaccinationKey(event *models.VaccinationEvent) bson.M {
	return bson.M{
		"goat_id":         event.GoatID,
		"vaccine_type_id": event.VaccineTypeID,
		"scheduled_date":  dates.Day(event.ScheduledDate),
	}
}
