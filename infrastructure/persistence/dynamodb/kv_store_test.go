package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/ProfAvery/flowy-servers/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *mockAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.UpdateItemOutput), args.Error(1)
}

func (m *mockAPI) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

func (m *mockAPI) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

func pkOf(key map[string]types.AttributeValue) string {
	if s, ok := key[attrPK].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func namesContain(names map[string]string, want string) bool {
	for _, v := range names {
		if v == want {
			return true
		}
	}
	return false
}

func TestKVStore_HSet(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	api.On("UpdateItem", ctx, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return aws.ToString(in.TableName) == "flowy" &&
			pkOf(in.Key) == "flowy:a" &&
			namesContain(in.ExpressionAttributeNames, "F_text") &&
			len(in.ExpressionAttributeValues) == 1
	})).Return(&dynamodb.UpdateItemOutput{}, nil)

	store := NewKVStore(api, "flowy", zap.NewNop())
	require.NoError(t, store.HSet(ctx, "flowy:a", "text", "hi"))
	api.AssertExpectations(t)
}

func TestKVStore_HGet(t *testing.T) {
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		api := new(mockAPI)
		api.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return aws.ToBool(in.ConsistentRead) && namesContain(in.ExpressionAttributeNames, "F_checked")
		})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
			"F_checked": &types.AttributeValueMemberS{Value: "1"},
		}}, nil)

		v, ok, err := NewKVStore(api, "flowy", nil).HGet(ctx, "flowy:a", "checked")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1", v)
	})

	t.Run("missing item", func(t *testing.T) {
		api := new(mockAPI)
		api.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, ok, err := NewKVStore(api, "flowy", nil).HGet(ctx, "flowy:a", "text")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestKVStore_RPushAndLRange(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	api.On("UpdateItem", ctx, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return pkOf(in.Key) == "flowy:a_children" && namesContain(in.ExpressionAttributeNames, attrItems)
	})).Return(&dynamodb.UpdateItemOutput{}, nil)
	api.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		attrItems: &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberS{Value: "b"},
			&types.AttributeValueMemberS{Value: "c"},
		}},
	}}, nil)

	store := NewKVStore(api, "flowy", nil)
	require.NoError(t, store.RPush(ctx, "flowy:a_children", "b", "c"))

	items, err := store.LRange(ctx, "flowy:a_children")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, items)
}

func TestKVStore_LRangeMissing(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	api.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	items, err := NewKVStore(api, "flowy", nil).LRange(ctx, "flowy:a_children")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestKVStore_DelAndPing(t *testing.T) {
	ctx := context.Background()
	api := new(mockAPI)
	api.On("DeleteItem", ctx, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return pkOf(in.Key) == "flowy:a"
	})).Return(&dynamodb.DeleteItemOutput{}, nil)
	api.On("DescribeTable", ctx, mock.Anything).Return(&dynamodb.DescribeTableOutput{}, nil)

	store := NewKVStore(api, "flowy", nil)
	require.NoError(t, store.Del(ctx, "flowy:a"))
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Close())
	api.AssertExpectations(t)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	throttled := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
	assert.ErrorIs(t, classify(throttled), ports.ErrStoreUnavailable)

	conditional := &smithy.GenericAPIError{Code: "ValidationException", Message: "bad"}
	err := classify(conditional)
	assert.NotErrorIs(t, err, ports.ErrStoreUnavailable)
	assert.Equal(t, conditional, err)

	assert.ErrorIs(t, classify(errors.New("dial tcp: i/o timeout")), ports.ErrStoreUnavailable)
	assert.ErrorIs(t, classify(context.Canceled), context.Canceled)
}
