package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// SaveGoat upserts a goat keyed by its tag.
func (r *MongoDBRepository) SaveGoat(ctx context.Context, goat *models.Goat) error {
	if goat.Status == "" {
		goat.Status = models.GoatActive
	}
	id, err := r.nextID(ctx, collGoats)
	if err != nil {
		return err
	}

	set := bson.M{
		"goat_type_id":        goat.TypeID,
		"sex":                 goat.Sex,
		"dob":                 dayPtr(goat.BirthDate),
		"age_estimate_months": goat.AgeEstimateMonths,
		"date_acquired":       dates.Day(goat.AcquiredOn),
		"acquisition_method":  goat.AcquisitionMethod,
		"is_pregnant":         goat.Pregnant,
		"weight":              goat.Weight,
		"status":              goat.Status,
		"location":            goat.Location,
		"notes":               goat.Notes,
	}
	var saved models.Goat
	err = r.upsertReturning(ctx, collGoats,
		bson.M{"tag": goat.Tag},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": id}},
		&saved)
	if err != nil {
		return fmt.Errorf("save goat %s: %w", goat.Tag, err)
	}
	goat.ID = saved.ID
	return nil
}

// GoatByTag loads a single goat.
func (r *MongoDBRepository) GoatByTag(ctx context.Context, tag string) (models.Goat, error) {
	var goat models.Goat
	if err := r.findOne(ctx, collGoats, bson.M{"tag": tag}, &goat); err != nil {
		return models.Goat{}, fmt.Errorf("goat %s: %w", tag, err)
	}
	return goat, nil
}

// ListGoats returns goats ordered by tag.
func (r *MongoDBRepository) ListGoats(ctx context.Context, filter repository.GoatFilter) ([]models.Goat, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["status"] = models.GoatActive
	}
	if filter.Sex != "" {
		query["sex"] = filter.Sex
	}
	var goats []models.Goat
	if err := r.findAll(ctx, collGoats, query, bson.D{{Key: "tag", Value: 1}}, &goats); err != nil {
		return nil, err
	}
	return goats, nil
}

// SaveGoatType upserts a goat type by name.
func (r *MongoDBRepository) SaveGoatType(ctx context.Context, goatType *models.GoatType) error {
	id, err := r.nextID(ctx, collGoatTypes)
	if err != nil {
		return err
	}
	var saved models.GoatType
	if err := r.upsertReturning(ctx, collGoatTypes,
		bson.M{"name": goatType.Name},
		bson.M{"$setOnInsert": bson.M{"_id": id}},
		&saved); err != nil {
		return fmt.Errorf("save goat type %s: %w", goatType.Name, err)
	}
	goatType.ID = saved.ID
	return nil
}

// ListGoatTypes returns every goat type ordered by name.
func (r *MongoDBRepository) ListGoatTypes(ctx context.Context) ([]models.GoatType, error) {
	var out []models.GoatType
	if err := r.findAll(ctx, collGoatTypes, bson.M{}, bson.D{{Key: "name", Value: 1}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveVaccineType upserts a vaccine type by name.
func (r *MongoDBRepository) SaveVaccineType(ctx context.Context, vt *models.VaccineType) error {
	id, err := r.nextID(ctx, collVaccineTypes)
	if err != nil {
		return err
	}
	var saved models.VaccineType
	err = r.upsertReturning(ctx, collVaccineTypes,
		bson.M{"name": vt.Name},
		bson.M{
			"$set": bson.M{
				"description":            vt.Description,
				"min_age_days":           vt.MinAgeDays,
				"booster_schedule_days":  vt.BoosterDays,
				"default_frequency_days": vt.DefaultFrequencyDays,
			},
			"$setOnInsert": bson.M{"_id": id},
		},
		&saved)
	if err != nil {
		return fmt.Errorf("save vaccine type %s: %w", vt.Name, err)
	}
	vt.ID = saved.ID
	return nil
}

// VaccineTypeByID loads one vaccine type.
func (r *MongoDBRepository) VaccineTypeByID(ctx context.Context, id int64) (models.VaccineType, error) {
	var vt models.VaccineType
	if err := r.findOne(ctx, collVaccineTypes, bson.M{"_id": id}, &vt); err != nil {
		return models.VaccineType{}, fmt.Errorf("vaccine type %d: %w", id, err)
	}
	return vt, nil
}

// ListVaccineTypes returns the vaccine catalog ordered by name.
func (r *MongoDBRepository) ListVaccineTypes(ctx context.Context) ([]models.VaccineType, error) {
	var out []models.VaccineType
	if err := r.findAll(ctx, collVaccineTypes, bson.M{}, bson.D{{Key: "name", Value: 1}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveTargetWeight upserts one step of the weight curve.
func (r *MongoDBRepository) SaveTargetWeight(ctx context.Context, target *models.TargetWeight) error {
	id, err := r.nextID(ctx, collTargets)
	if err != nil {
		return err
	}
	var saved models.TargetWeight
	err = r.upsertReturning(ctx, collTargets,
		bson.M{"goat_type_id": target.GoatTypeID, "sex": string(target.Sex), "age_months": target.AgeMonths},
		bson.M{"$set": bson.M{"min_weight": target.MinWeight}, "$setOnInsert": bson.M{"_id": id}},
		&saved)
	if err != nil {
		return fmt.Errorf("save target weight: %w", err)
	}
	target.ID = saved.ID
	return nil
}

// ListTargetWeights returns the whole weight table.
func (r *MongoDBRepository) ListTargetWeights(ctx context.Context) ([]models.TargetWeight, error) {
	var out []models.TargetWeight
	sort := bson.D{{Key: "goat_type_id", Value: 1}, {Key: "age_months", Value: 1}, {Key: "sex", Value: 1}}
	if err := r.findAll(ctx, collTargets, bson.M{}, sort, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBreeding stores a mating record.
func (r *MongoDBRepository) CreateBreeding(ctx context.Context, event *models.BreedingEvent) error {
	id, err := r.nextID(ctx, collBreedings)
	if err != nil {
		return err
	}
	event.ID = id
	event.MatingStart = dates.Day(event.MatingStart)
	event.MatingEnd = dayPtr(event.MatingEnd)
	if _, err := r.db.Collection(collBreedings).InsertOne(ctx, event); err != nil {
		return fmt.Errorf("create breeding: %w", err)
	}
	return nil
}

// ListBreedings returns every mating record, oldest first.
func (r *MongoDBRepository) ListBreedings(ctx context.Context) ([]models.BreedingEvent, error) {
	var out []models.BreedingEvent
	sort := bson.D{{Key: "mating_start_date", Value: 1}, {Key: "_id", Value: 1}}
	if err := r.findAll(ctx, collBreedings, bson.M{}, sort, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSickness logs an illness.
func (r *MongoDBRepository) CreateSickness(ctx context.Context, sickness *models.Sickness) error {
	id, err := r.nextID(ctx, collSicknesses)
	if err != nil {
		return err
	}
	sickness.ID = id
	if sickness.Status == "" {
		sickness.Status = models.SicknessActive
	}
	if sickness.CreatedAt.IsZero() {
		sickness.CreatedAt = r.now().UTC()
	}
	if _, err := r.db.Collection(collSicknesses).InsertOne(ctx, sickness); err != nil {
		return fmt.Errorf("create sickness: %w", err)
	}
	return nil
}

// ListSicknesses returns illness records, newest first.
func (r *MongoDBRepository) ListSicknesses(ctx context.Context, activeOnly bool) ([]models.Sickness, error) {
	query := bson.M{}
	if activeOnly {
		query["status"] = models.SicknessActive
	}
	var out []models.Sickness
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	if err := r.findAll(ctx, collSicknesses, query, sort, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecoverSicknesses closes every active sickness of a goat.
func (r *MongoDBRepository) RecoverSicknesses(ctx context.Context, goatID int64) (int, error) {
	res, err := r.db.Collection(collSicknesses).UpdateMany(ctx,
		bson.M{"goat_id": goatID, "status": models.SicknessActive},
		bson.M{"$set": bson.M{"status": models.SicknessRecovered}})
	if err != nil {
		return 0, fmt.Errorf("recover sicknesses of goat %d: %w", goatID, err)
	}
	return int(res.ModifiedCount), nil
}

// CreateFarmEvent stores a user calendar entry.
func (r *MongoDBRepository) CreateFarmEvent(ctx context.Context, event *models.FarmEvent) error {
	id, err := r.nextID(ctx, collFarmEvents)
	if err != nil {
		return err
	}
	event.ID = id
	event.Date = dates.Day(event.Date)
	if _, err := r.db.Collection(collFarmEvents).InsertOne(ctx, event); err != nil {
		return fmt.Errorf("create farm event: %w", err)
	}
	return nil
}

// ListFarmEvents returns every farm event ordered by date.
func (r *MongoDBRepository) ListFarmEvents(ctx context.Context) ([]models.FarmEvent, error) {
	var out []models.FarmEvent
	sort := bson.D{{Key: "event_date", Value: 1}, {Key: "_id", Value: 1}}
	if err := r.findAll(ctx, collFarmEvents, bson.M{}, sort, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveHerdReport stores the snapshot of a day, replacing an earlier one for the same day.
func (r *MongoDBRepository) SaveHerdReport(ctx context.Context, report models.HerdReport) error {
	report.Date = dates.Day(report.Date)
	if report.CreatedAt.IsZero() {
		report.CreatedAt = r.now().UTC()
	}
	_, err := r.db.Collection(collHerdReports).ReplaceOne(ctx,
		bson.M{"date": report.Date}, report, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert herd report: %w", err)
	}
	return nil
}

// ListHerdReports returns snapshots taken on or after since, oldest first.
func (r *MongoDBRepository) ListHerdReports(ctx context.Context, since time.Time) ([]models.HerdReport, error) {
	var out []models.HerdReport
	query := bson.M{"date": bson.M{"$gte": dates.Day(since)}}
	if err := r.findAll(ctx, collHerdReports, query, bson.D{{Key: "date", Value: 1}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dates.Day(*t)
	return &d
}
