package container

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/babylonlabs-io/nft-staking/testutil"
)

const (
	replicaSet                = "rs0"
	alreadyInitializedErrCode = 23

	RabbitMQUser     = "user"
	RabbitMQPassword = "password"
)

// Manager is a wrapper around all Docker instances, and the Docker API.
// It provides utilities to run and interact with all Docker containers used within e2e testing.
type Manager struct {
	cfg       ImageConfig
	pool      *dockertest.Pool
	resources map[string]*dockertest.Resource
}

// NewManager creates a new Manager instance and initializes
// all Docker specific utilities. Returns an error if initialization fails.
func NewManager(t *testing.T) (*Manager, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, err
	}
	pool.MaxWait = time.Minute

	return &Manager{
		cfg:       NewImageConfig(),
		pool:      pool,
		resources: make(map[string]*dockertest.Resource),
	}, nil
}

func (m *Manager) run(t *testing.T, name string, opts *dockertest.RunOptions) (*dockertest.Resource, error) {
	// there can be only 1 container with the same name
	opts.Name = fmt.Sprintf("%s-e2e-%s", name, testutil.RandomName(4))

	resource, err := m.pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, err
	}
	m.resources[name] = resource
	return resource, nil
}

// RunMongoResource starts a single node replica set and returns its address.
func (m *Manager) RunMongoResource(t *testing.T) (string, error) {
	resource, err := m.run(t, "mongo", &dockertest.RunOptions{
		Repository: m.cfg.MongoRepository,
		Tag:        m.cfg.MongoVersion,
		Cmd:        []string{"--replSet", replicaSet, "--bind_ip_all"},
	})
	if err != nil {
		return "", err
	}

	address := fmt.Sprintf("mongodb://localhost:%s/?directConnection=true", resource.GetPort("27017/tcp"))
	err = m.pool.Retry(func() error {
		return initiateReplicaSet(address)
	})
	if err != nil {
		return "", err
	}
	return address, nil
}

func initiateReplicaSet(address string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(address))
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	cmd := bson.D{{Key: "replSetInitiate", Value: bson.M{
		"_id":     replicaSet,
		"members": bson.A{bson.M{"_id": 0, "host": "localhost:27017"}},
	}}}
	err = client.Database("admin").RunCommand(ctx, cmd).Err()
	var cmdErr mongo.CommandError
	if err != nil && !(errors.As(err, &cmdErr) && cmdErr.Code == alreadyInitializedErrCode) {
		return err
	}

	var status struct {
		IsWritablePrimary bool `bson:"isWritablePrimary"`
	}
	err = client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&status)
	if err != nil {
		return err
	}
	if !status.IsWritablePrimary {
		return errors.New("mongo is not primary yet")
	}
	return nil
}

// RunRabbitMQResource starts a broker and returns its host:port address.
func (m *Manager) RunRabbitMQResource(t *testing.T) (string, error) {
	resource, err := m.run(t, "rabbitmq", &dockertest.RunOptions{
		Repository: m.cfg.RabbitMQRepository,
		Tag:        m.cfg.RabbitMQVersion,
		Env: []string{
			"RABBITMQ_DEFAULT_USER=" + RabbitMQUser,
			"RABBITMQ_DEFAULT_PASS=" + RabbitMQPassword,
		},
	})
	if err != nil {
		return "", err
	}

	address := "localhost:" + resource.GetPort("5672/tcp")
	err = m.pool.Retry(func() error {
		conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s", RabbitMQUser, RabbitMQPassword, address))
		if err != nil {
			return err
		}
		return conn.Close()
	})
	if err != nil {
		return "", err
	}
	return address, nil
}

// ClearResources removes all outstanding Docker resources created by the Manager.
func (m *Manager) ClearResources() error {
	var errs []error
	for _, resource := range m.resources {
		if err := m.pool.Purge(resource); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
