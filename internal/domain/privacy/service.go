package privacy

import (
	"github.com/puzpuzpuz/xsync/v3"

	"wesync/internal/domain/message"
)

// Policy решает, можно ли доставить сообщение получателю
type Policy interface {
	Allowed(meta *message.Meta) bool
}

type pair struct {
	owner, blocked string
}

// Service политика с черным списком: получатель может заблокировать отправителя
type Service struct {
	blocked *xsync.MapOf[pair, struct{}]
}

func NewService() *Service {
	return &Service{blocked: xsync.NewMapOf[pair, struct{}]()}
}

// Block запрещает доставку сообщений от from пользователю owner
func (s *Service) Block(owner, from string) {
	s.blocked.Store(pair{owner: owner, blocked: from}, struct{}{})
}

func (s *Service) Unblock(owner, from string) {
	s.blocked.Delete(pair{owner: owner, blocked: from})
}

// Reset заменяет весь черный список парами владелец, отправитель
func (s *Service) Reset(pairs [][2]string) {
	s.blocked.Clear()
	for _, p := range pairs {
		s.Block(p[0], p[1])
	}
}

func (s *Service) Allowed(meta *message.Meta) bool {
	if meta == nil {
		return false
	}
	_, blocked := s.blocked.Load(pair{owner: meta.To, blocked: meta.From})
	return !blocked
}

// AllowAll политика без ограничений
type AllowAll struct{}

func (AllowAll) Allowed(*message.Meta) bool { return true }
