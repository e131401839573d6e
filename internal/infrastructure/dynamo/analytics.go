package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/linkedcreds-api/internal/domain"
)

type analyticsAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// analyticsItem is the flat table layout. Counters are top-level number
// attributes named <group>_<counter> so ADD can upsert them.
type analyticsItem struct {
	Email        string    `dynamodbav:"email"`
	LastActivity time.Time `dynamodbav:"lastActivity"`

	CredentialsSkill             int `dynamodbav:"credentials_skill"`
	CredentialsEmployment        int `dynamodbav:"credentials_employment"`
	CredentialsPerformanceReview int `dynamodbav:"credentials_performanceReview"`
	CredentialsVolunteer         int `dynamodbav:"credentials_volunteer"`
	CredentialsIDVerification    int `dynamodbav:"credentials_idVerification"`

	ClicksRequestRecommendation int `dynamodbav:"clicks_requestRecommendation"`
	ClicksShareCredential       int `dynamodbav:"clicks_shareCredential"`

	EvidenceSkillVCs           int `dynamodbav:"evidence_skillVCs"`
	EvidenceEmploymentVCs      int `dynamodbav:"evidence_employmentVCs"`
	EvidenceVolunteerVCs       int `dynamodbav:"evidence_volunteerVCs"`
	EvidencePerformanceReviews int `dynamodbav:"evidence_performanceReviews"`
}

func (it *analyticsItem) toDomain() *domain.UserAnalytics {
	return &domain.UserAnalytics{
		Email: it.Email,
		CredentialsIssued: domain.CredentialsIssued{
			Skill:             it.CredentialsSkill,
			Employment:        it.CredentialsEmployment,
			PerformanceReview: it.CredentialsPerformanceReview,
			Volunteer:         it.CredentialsVolunteer,
			IDVerification:    it.CredentialsIDVerification,
		},
		ClickRates: domain.ClickRates{
			RequestRecommendation: it.ClicksRequestRecommendation,
			ShareCredential:       it.ClicksShareCredential,
		},
		EvidenceAttachmentRates: domain.EvidenceAttachmentRates{
			SkillVCs:           it.EvidenceSkillVCs,
			EmploymentVCs:      it.EvidenceEmploymentVCs,
			VolunteerVCs:       it.EvidenceVolunteerVCs,
			PerformanceReviews: it.EvidencePerformanceReviews,
		},
		LastActivity: it.LastActivity,
	}
}

func fromDomain(a *domain.UserAnalytics) *analyticsItem {
	return &analyticsItem{
		Email:                        a.Email,
		LastActivity:                 a.LastActivity,
		CredentialsSkill:             a.CredentialsIssued.Skill,
		CredentialsEmployment:        a.CredentialsIssued.Employment,
		CredentialsPerformanceReview: a.CredentialsIssued.PerformanceReview,
		CredentialsVolunteer:         a.CredentialsIssued.Volunteer,
		CredentialsIDVerification:    a.CredentialsIssued.IDVerification,
		ClicksRequestRecommendation:  a.ClickRates.RequestRecommendation,
		ClicksShareCredential:        a.ClickRates.ShareCredential,
		EvidenceSkillVCs:             a.EvidenceAttachmentRates.SkillVCs,
		EvidenceEmploymentVCs:        a.EvidenceAttachmentRates.EmploymentVCs,
		EvidenceVolunteerVCs:         a.EvidenceAttachmentRates.VolunteerVCs,
		EvidencePerformanceReviews:   a.EvidenceAttachmentRates.PerformanceReviews,
	}
}

func counterAttr(group, name string) string { return group + "_" + name }

// AnalyticsRepo stores per-user usage counters. PK: email.
type AnalyticsRepo struct {
	client    analyticsAPI
	tableName string
}

func NewAnalyticsRepo(client *dynamodb.Client, tableName string) *AnalyticsRepo {
	return &AnalyticsRepo{client: client, tableName: tableName}
}

func (r *AnalyticsRepo) Get(ctx context.Context, email string) (*domain.UserAnalytics, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("email", email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get analytics: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("analytics not found: %w", domain.ErrNotFound)
	}
	var it analyticsItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal analytics: %w", err)
	}
	return it.toDomain(), nil
}

// Create writes a fresh document. An existing document is domain.ErrConflict.
func (r *AnalyticsRepo) Create(ctx context.Context, a *domain.UserAnalytics) error {
	item, err := attributevalue.MarshalMap(fromDomain(a))
	if err != nil {
		return fmt.Errorf("marshal analytics: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("analytics for %s already exist: %w", a.Email, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("put analytics: %w", err)
	}
	return nil
}

// Increment adds 1 to a counter, creating the document when missing.
func (r *AnalyticsRepo) Increment(ctx context.Context, email, group, name string, at time.Time) (*domain.UserAnalytics, error) {
	return r.update(ctx, email,
		map[string]interface{}{"lastActivity": at},
		map[string]int{counterAttr(group, name): 1},
	)
}

// Set overwrites a counter, creating the document when missing.
func (r *AnalyticsRepo) Set(ctx context.Context, email, group, name string, value int, at time.Time) (*domain.UserAnalytics, error) {
	return r.update(ctx, email,
		map[string]interface{}{"lastActivity": at, counterAttr(group, name): value},
		nil,
	)
}

func (r *AnalyticsRepo) update(ctx context.Context, email string, set map[string]interface{}, add map[string]int) (*domain.UserAnalytics, error) {
	ue, err := buildUpdateExpr(set, add)
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("update analytics: %w", err)
	}
	var it analyticsItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal analytics: %w", err)
	}
	return it.toDomain(), nil
}
