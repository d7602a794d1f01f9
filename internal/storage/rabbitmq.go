package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"transcript-hr-go/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageQueue 消息队列接口
type MessageQueue interface {
	// PublishMessage 发布消息到指定交换机
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error

	// PublishJSON 发布JSON格式消息
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error

	// SetupAudioPipeline 声明音频处理流水线所需的交换机、队列和绑定
	SetupAudioPipeline() error

	// Close 关闭连接
	Close() error
}

// 确保RabbitMQ实现了MessageQueue接口
var _ MessageQueue = (*RabbitMQ)(nil)

// RabbitMQ 提供消息队列功能
type RabbitMQ struct {
	conn         *amqp.Connection
	channelPool  sync.Pool
	declared     map[string]bool // 记录已声明的exchange/queue/binding
	declaredMu   sync.Mutex
	publishMutex sync.Mutex // 保护发布操作
	cfg          *config.RabbitMQConfig
}

// NewRabbitMQ 创建RabbitMQ客户端
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器 (%s): %w", cfg.URL, err)
	}

	mq := &RabbitMQ{
		conn:     conn,
		declared: make(map[string]bool),
		cfg:      cfg,
	}

	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, chErr := conn.Channel()
			if chErr != nil {
				log.Printf("创建RabbitMQ通道失败: %v", chErr)
				return nil
			}
			return ch
		},
	}

	// 先取一个通道验证连接可用
	testCh := mq.getChannel()
	if testCh == nil {
		conn.Close()
		return nil, fmt.Errorf("无法创建RabbitMQ通道")
	}
	mq.putChannel(testCh)

	log.Printf("成功连接到RabbitMQ服务器: %s", cfg.URL)
	return mq, nil
}

// 获取可用通道
func (r *RabbitMQ) getChannel() *amqp.Channel {
	ch := r.channelPool.Get()
	if ch == nil {
		newCh, err := r.conn.Channel()
		if err != nil {
			log.Printf("创建新RabbitMQ通道失败: %v", err)
			return nil
		}
		return newCh
	}
	return ch.(*amqp.Channel)
}

// 归还通道到池
func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil {
		r.channelPool.Put(ch)
	}
}

// Close 关闭连接
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// markDeclared 记录声明状态，返回此前是否已声明过
func (r *RabbitMQ) markDeclared(key string) bool {
	r.declaredMu.Lock()
	defer r.declaredMu.Unlock()
	if r.declared[key] {
		return true
	}
	r.declared[key] = true
	return false
}

// SetupAudioPipeline 声明音频处理流水线的拓扑：
// audio事件交换机(direct) + 处理队列 + 按上传路由键绑定。
// 所有声明均为幂等操作，重复调用安全。
func (r *RabbitMQ) SetupAudioPipeline() error {
	if r.cfg.AudioEventsExchange == "" || r.cfg.AudioProcessQueue == "" {
		return fmt.Errorf("音频流水线的交换机和队列名称不能为空")
	}

	if err := r.ensureExchange(r.cfg.AudioEventsExchange, "direct", true); err != nil {
		return err
	}
	if err := r.ensureQueue(r.cfg.AudioProcessQueue, true); err != nil {
		return err
	}
	if err := r.bindQueue(r.cfg.AudioProcessQueue, r.cfg.AudioEventsExchange, r.cfg.AudioUploadedRouting); err != nil {
		return err
	}
	return nil
}

// ensureExchange 确保exchange存在
func (r *RabbitMQ) ensureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "amq.default" || exchangeName == "default" {
		return fmt.Errorf("不能声明默认交换机 '%s'", exchangeName)
	}
	if r.markDeclared("exchange:" + exchangeName) {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.ExchangeDeclare(
		exchangeName, // exchange名称
		exchangeType, // exchange类型
		durable,      // 持久化
		false,        // 自动删除
		false,        // 内部专用
		false,        // 非阻塞
		nil,          // 参数
	)
	if err != nil {
		return fmt.Errorf("声明exchange '%s' 失败: %w", exchangeName, err)
	}

	log.Printf("已确保exchange存在: '%s' (类型: %s)", exchangeName, exchangeType)
	return nil
}

// ensureQueue 确保队列存在
func (r *RabbitMQ) ensureQueue(queueName string, durable bool) error {
	if r.markDeclared("queue:" + queueName) {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	_, err := ch.QueueDeclare(
		queueName, // 队列名称
		durable,   // 持久化
		false,     // 自动删除
		false,     // 独占
		false,     // 非阻塞
		nil,       // 参数
	)
	if err != nil {
		return fmt.Errorf("声明队列 '%s' 失败: %w", queueName, err)
	}

	log.Printf("已确保队列存在: %s", queueName)
	return nil
}

// bindQueue 绑定队列到exchange
func (r *RabbitMQ) bindQueue(queueName, exchangeName, routingKey string) error {
	if r.markDeclared(fmt.Sprintf("binding:%s:%s:%s", exchangeName, queueName, routingKey)) {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.QueueBind(
		queueName,    // 队列名
		routingKey,   // 路由键
		exchangeName, // exchange名
		false,        // 非阻塞
		nil,          // 参数
	)
	if err != nil {
		return fmt.Errorf("绑定队列 '%s' 到exchange '%s' 失败: %w", queueName, exchangeName, err)
	}

	log.Printf("已绑定队列 %s 到exchange %s，路由键: %s", queueName, exchangeName, routingKey)
	return nil
}

// PublishMessage 发布消息到exchange
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	var deliveryMode uint8 = 1 // 非持久化
	if persistent {
		deliveryMode = 2 // 持久化
	}

	return ch.PublishWithContext(
		ctx,
		exchangeName, // exchange名
		routingKey,   // 路由键
		false,        // 强制
		false,        // 立即
		amqp.Publishing{
			DeliveryMode: deliveryMode,
			ContentType:  "application/json",
			Body:         message,
			Timestamp:    time.Now(),
		},
	)
}

// PublishJSON 发布JSON格式的消息
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}
	return r.PublishMessage(ctx, exchangeName, routingKey, jsonData, persistent)
}

// StartConsumer 启动消费者，使用workers个工作协程并发处理投递。
// handler返回true时确认消息，返回false时拒绝并重新入队。
// 关闭返回的stop通道可停止所有工作协程。
func (r *RabbitMQ) StartConsumer(queueName string, prefetchCount, workers int, handler func(context.Context, []byte) bool) (chan<- struct{}, error) {
	if workers <= 0 {
		workers = 1
	}
	stopCh := make(chan struct{})

	ch := r.getChannel()
	if ch == nil {
		return nil, fmt.Errorf("无法获取RabbitMQ通道")
	}

	// QoS限制未确认消息数量，避免单个消费者积压过多
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		r.putChannel(ch)
		return nil, fmt.Errorf("设置QoS失败: %w", err)
	}

	deliveries, err := ch.Consume(
		queueName, // 队列
		"",        // 消费者标签，留空由server生成唯一标签
		false,     // 自动确认
		false,     // 独占
		false,     // 非本地
		false,     // 非阻塞
		nil,       // 参数
	)
	if err != nil {
		r.putChannel(ch)
		return nil, fmt.Errorf("注册消费者失败: %w", err)
	}

	log.Printf("RabbitMQ消费者已启动，队列: %s, 预取数量: %d, 工作协程: %d", queueName, prefetchCount, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-stopCh:
					return
				case delivery, ok := <-deliveries:
					if !ok {
						log.Printf("RabbitMQ投递通道已关闭，工作协程 %d 退出", workerID)
						return
					}
					if handler(context.Background(), delivery.Body) {
						if err := delivery.Ack(false); err != nil {
							log.Printf("确认消息失败: %v", err)
						}
					} else {
						// 处理失败，拒绝并重新入队
						if err := delivery.Nack(false, true); err != nil {
							log.Printf("拒绝消息失败: %v", err)
						}
					}
				}
			}
		}(i)
	}

	// 全部工作协程退出后归还通道
	go func() {
		wg.Wait()
		r.putChannel(ch)
		log.Printf("RabbitMQ消费者已停止: %s", queueName)
	}()

	return stopCh, nil
}
