package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trakt-agent/server/internal/agent/model"
	errx "github.com/trakt-agent/server/internal/core/error"
	logx "github.com/trakt-agent/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const contractIndexKey = "contracts:index"

// RedisContractRepository stores deployment records as JSON values keyed by
// contract id, with a set index for listing. Records never expire; a
// deployment record outlives any conversation.
type RedisContractRepository struct {
	rdb redis.Cmdable
}

func NewRedisContractRepository(rdb redis.Cmdable) *RedisContractRepository {
	return &RedisContractRepository{rdb: rdb}
}

func (r *RedisContractRepository) contractKey(id string) string {
	return fmt.Sprintf("contract:%s", id)
}

func (r *RedisContractRepository) Save(ctx context.Context, contract *model.DeployedContract) error {
	if contract == nil || contract.ID == "" {
		return fmt.Errorf("contract id is required")
	}
	b, err := json.Marshal(contract)
	if err != nil {
		return fmt.Errorf("marshal contract: %w", err)
	}
	key := r.contractKey(contract.ID)

	if err := r.rdb.Set(ctx, key, b, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save contract record")
		return errx.WrapRedis(err)
	}
	if err := r.rdb.SAdd(ctx, contractIndexKey, contract.ID).Err(); err != nil {
		logx.Error().Err(err).Str("contract_id", contract.ID).Msg("failed to index contract record")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisContractRepository) Get(ctx context.Context, id string) (*model.DeployedContract, error) {
	raw, err := r.rdb.Get(ctx, r.contractKey(id)).Result()
	if err != nil {
		return nil, errx.WrapRedis(err)
	}
	var contract model.DeployedContract
	if err := json.Unmarshal([]byte(raw), &contract); err != nil {
		return nil, fmt.Errorf("unmarshal contract %s: %w", id, err)
	}
	return &contract, nil
}

func (r *RedisContractRepository) List(ctx context.Context) ([]*model.DeployedContract, error) {
	ids, err := r.rdb.SMembers(ctx, contractIndexKey).Result()
	if err != nil {
		if err == redis.Nil {
			return []*model.DeployedContract{}, nil
		}
		return nil, errx.WrapRedis(err)
	}

	contracts := make([]*model.DeployedContract, 0, len(ids))
	for _, id := range ids {
		contract, err := r.Get(ctx, id)
		if err != nil {
			// index can be ahead of a deleted record; skip and log
			logx.Warn().Err(err).Str("contract_id", id).Msg("indexed contract record missing")
			continue
		}
		contracts = append(contracts, contract)
	}
	return contracts, nil
}

func (r *RedisContractRepository) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, r.contractKey(id)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	if err := r.rdb.SRem(ctx, contractIndexKey, id).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisContractRepository) SetSignature(ctx context.Context, id string, party model.SignatureParty, address, signature string) error {
	contract, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	switch party {
	case model.PartyA:
		contract.PartyASigned = true
		contract.PartyAAddress = address
		contract.PartyASignature = signature
	case model.PartyB:
		contract.PartyBSigned = true
		contract.PartyBAddress = address
		contract.PartyBSignature = signature
	default:
		return errx.New(fmt.Errorf("unknown party %q", party), http.StatusBadRequest, "invalid signature party")
	}

	logx.Debug().
		Str("contract_id", id).
		Str("party", string(party)).
		Str("address", address).
		Msg("Recording contract signature")

	return r.Save(ctx, contract)
}

var _ model.ContractRepository = (*RedisContractRepository)(nil)
