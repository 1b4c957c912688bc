// internal/storage/dynstore/dynstore.go
//
// Package dynstore 以 DynamoDB 資料表實作 bank.Store。
// 資料表主鍵為數值屬性 id；id = 0 的項目為序號計數器（屬性 seq），不屬於帳戶。
package dynstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"restclient/internal/bank"
	"restclient/internal/compte"
)

const counterID = "0"

// API 為 Store 使用到的 DynamoDB 操作；*dynamodb.Client 即滿足此介面。
type API interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store 為 DynamoDB 後端。
type Store struct {
	api   API
	table string
	now   func() time.Time
}

var _ bank.Store = (*Store)(nil)

// New 以既有的 client 建立 Store。
func New(api API, table string) *Store {
	return &Store{api: api, table: table, now: time.Now}
}

// NewClient 以預設 AWS 設定建立 client；endpoint 非空時改連本地 DynamoDB 並使用固定憑證。
func NewClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	var opts []func(*config.LoadOptions) error
	if endpoint != "" {
		opts = append(opts,
			config.WithRegion("localhost"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dynstore: load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func (s *Store) List(ctx context.Context) ([]compte.Account, error) {
	out := []compte.Account{}
	p := dynamodb.NewScanPaginator(s.api, &dynamodb.ScanInput{TableName: aws.String(s.table)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if isCounter(item) {
				continue
			}
			a, err := decode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IDValue() < out[j].IDValue() })
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (compte.Account, error) {
	if id <= 0 {
		return compte.Account{}, compte.ErrNotFound
	}
	res, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return compte.Account{}, err
	}
	if len(res.Item) == 0 {
		return compte.Account{}, compte.ErrNotFound
	}
	return decode(res.Item)
}

// Create 從計數器取得新 id，再以條件寫入避免覆蓋既有項目。
func (s *Store) Create(ctx context.Context, a compte.Account) (compte.Account, error) {
	if err := a.Validate(); err != nil {
		return compte.Account{}, err
	}
	if a.CreatedDate == "" {
		a.CreatedDate = compte.Today(s.now())
	}
	id, err := s.nextID(ctx)
	if err != nil {
		return compte.Account{}, err
	}
	a = a.WithID(id)
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                encode(a),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return compte.Account{}, fmt.Errorf("dynstore: put %d: %w", id, err)
	}
	return a, nil
}

// Update 只取代 solde 與 type；項目不存在時條件失敗並回傳 ErrNotFound。
func (s *Store) Update(ctx context.Context, id int64, a compte.Account) (compte.Account, error) {
	if err := a.Validate(); err != nil {
		return compte.Account{}, err
	}
	if id <= 0 {
		return compte.Account{}, compte.ErrNotFound
	}
	res, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.table),
		Key:                      key(id),
		UpdateExpression:         aws.String("SET solde = :solde, #type = :type"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#type": "type"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":solde": &types.AttributeValueMemberS{Value: a.Balance.String()},
			":type":  &types.AttributeValueMemberS{Value: string(a.Type)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return compte.Account{}, notFound(err)
	}
	return decode(res.Attributes)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return compte.ErrNotFound
	}
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	return notFound(err)
}

// nextID 原子地遞增計數器項目並回傳新值。
func (s *Store) nextID(ctx context.Context) (int64, error) {
	res, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              map[string]types.AttributeValue{"id": &types.AttributeValueMemberN{Value: counterID}},
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("dynstore: next id: %w", err)
	}
	seq, ok := res.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("dynstore: counter has no seq attribute")
	}
	return strconv.ParseInt(seq.Value, 10, 64)
}

func notFound(err error) error {
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return compte.ErrNotFound
	}
	return err
}

func key(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)}}
}

func isCounter(item map[string]types.AttributeValue) bool {
	n, ok := item["id"].(*types.AttributeValueMemberN)
	return ok && n.Value == counterID
}

func encode(a compte.Account) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":           &types.AttributeValueMemberN{Value: strconv.FormatInt(a.IDValue(), 10)},
		"solde":        &types.AttributeValueMemberS{Value: a.Balance.String()},
		"type":         &types.AttributeValueMemberS{Value: string(a.Type)},
		"dateCreation": &types.AttributeValueMemberS{Value: a.CreatedDate},
	}
}

func decode(item map[string]types.AttributeValue) (compte.Account, error) {
	n, ok := item["id"].(*types.AttributeValueMemberN)
	if !ok {
		return compte.Account{}, errors.New("dynstore: item without numeric id")
	}
	id, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return compte.Account{}, fmt.Errorf("dynstore: id %q: %w", n.Value, err)
	}
	bal, err := decimal.NewFromString(str(item, "solde"))
	if err != nil {
		return compte.Account{}, fmt.Errorf("dynstore: account %d: %w", id, err)
	}
	return compte.Account{
		ID:          compte.IDPtr(id),
		Balance:     bal,
		Type:        compte.Type(str(item, "type")),
		CreatedDate: str(item, "dateCreation"),
	}, nil
}

func str(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
