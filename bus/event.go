package bus

import "time"

// Kind 事件种类
//
// 种类构成一棵显式的 is-a 链（单层标签 + 可选父标签），订阅匹配沿
// 父链判断，不依赖运行时类型反射。Kind 以指针身份参与匹配，应在包级
// 用 NewKind 定义后复用。
type Kind struct {
	name   string
	parent *Kind
}

// NewKind 定义事件种类，parent 可为 nil（根种类）
func NewKind(name string, parent *Kind) *Kind {
	return &Kind{name: name, parent: parent}
}

// Name 种类名称（用于日志与调试）
func (k *Kind) Name() string {
	if k == nil {
		return ""
	}
	return k.name
}

// Parent 父种类，根种类返回 nil
func (k *Kind) Parent() *Kind {
	if k == nil {
		return nil
	}
	return k.parent
}

// Is 判断 k 是否为 ancestor 本身或其子孙种类
func (k *Kind) Is(ancestor *Kind) bool {
	if ancestor == nil {
		return false
	}
	for curr := k; curr != nil; curr = curr.parent {
		if curr == ancestor {
			return true
		}
	}
	return false
}

// Event 事件接口
type Event interface {
	// EventKind 事件种类（用于订阅匹配）
	EventKind() *Kind
}

// BaseEvent 事件基类，可嵌入具体事件结构体
//
// Source 为借用引用，分发结束后不再保留；Tags 为有序字符串标签。
type BaseEvent struct {
	kind       *Kind
	source     any
	tags       []string
	occurredAt time.Time
}

// EventOption 事件构造选项
type EventOption func(*BaseEvent)

// WithSource 设置事件来源（借用，不拷贝）
func WithSource(source any) EventOption {
	return func(e *BaseEvent) {
		e.source = source
	}
}

// WithTags 追加事件标签
func WithTags(tags ...string) EventOption {
	return func(e *BaseEvent) {
		e.tags = append(e.tags, tags...)
	}
}

// NewEvent 创建基础事件
func NewEvent(kind *Kind, opts ...EventOption) BaseEvent {
	e := BaseEvent{
		kind:       kind,
		occurredAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// EventKind 返回事件种类
func (e BaseEvent) EventKind() *Kind {
	return e.kind
}

// Source 返回事件来源
func (e BaseEvent) Source() any {
	return e.source
}

// Tags 返回事件标签
func (e BaseEvent) Tags() []string {
	return e.tags
}

// OccurredAt 返回事件创建时间
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}
