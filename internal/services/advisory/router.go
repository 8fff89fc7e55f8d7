package advisory

import (
	"fmt"
	"strings"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/agri-ai/portal/grpc/gen/go/alert"
)

// alertRouter keeps one gRPC connection per field.
type alertRouter struct {
	mu    sync.RWMutex
	conns map[string]*grpc.ClientConn
	clis  map[string]pb.AlertServiceClient
}

var _ AlertRouter = (*alertRouter)(nil)

// NewAlertRouter parses a map string like
// "field1=host1:50051,field2=host2:50051" and builds a client per field.
func NewAlertRouter(mapStr string) (AlertRouter, error) {
	r := &alertRouter{
		conns: make(map[string]*grpc.ClientConn),
		clis:  make(map[string]pb.AlertServiceClient),
	}

	for _, p := range strings.Split(mapStr, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid ALERT_GRPC_ADDR_MAP entry: %q", p)
		}
		field, addr := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])

		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("client %s (%s): %w", field, addr, err)
		}

		r.mu.Lock()
		r.conns[field] = conn
		r.clis[field] = pb.NewAlertServiceClient(conn)
		r.mu.Unlock()
	}
	return r, nil
}

func (r *alertRouter) Get(field string) (pb.AlertServiceClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cli, ok := r.clis[field]
	return cli, ok
}

func (r *alertRouter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c != nil {
			_ = c.Close()
		}
	}
	r.clis = map[string]pb.AlertServiceClient{}
	r.conns = map[string]*grpc.ClientConn{}
}
