package database

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Broker 持有單一 RabbitMQ 連線與 channel
// channel 不可併發使用，所有操作經由互斥鎖序列化；
// 連線或 channel 在下次使用時發現已關閉會自動重建
type Broker struct {
	url string

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	chClose chan *amqp.Error
}

// NewBroker create a lazy Broker, 第一次 publish/consume 時才撥號
func NewBroker(url string) *Broker {
	return &Broker{url: url}
}

// DialBrokerWithRetry 嘗試連線到 RabbitMQ，並重試
func DialBrokerWithRetry(d Connection) (*Broker, error) {
	b := &Broker{url: d.ConnectStr}
	var err error

	for attempt := 1; attempt <= d.RetryCount; attempt++ {
		b.mu.Lock()
		_, err = b.channel()
		b.mu.Unlock()
		if err == nil {
			log.Printf("RabbitMQ[%s] 連線成功 (嘗試 %d 次)", d.ConnectStr, attempt)
			return b, nil
		}

		log.Printf("RabbitMQ[%s] 連線失敗 (嘗試 %d/%d): %v", d.ConnectStr, attempt, d.RetryCount, err)
		time.Sleep(d.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("無法連線 RabbitMQ[%s]，經過 %d 次嘗試: %v", d.ConnectStr, d.RetryCount, err)
}

// channel 取得可用 channel；連線死掉就重撥，
// 連線還活著但 channel 被 server 關閉（例如 precondition failure）
// 就只重開 channel。呼叫者必須持有 b.mu
func (b *Broker) channel() (*amqp.Channel, error) {
	if b.conn != nil && !b.conn.IsClosed() {
		if b.ch != nil && !b.channelClosed() {
			return b.ch, nil
		}
		if err := b.openChannel(b.conn); err == nil {
			return b.ch, nil
		}
		// channel 重開失敗，整條連線重建
	}

	if b.conn != nil {
		b.conn.Close()
	}
	b.conn = nil
	b.ch = nil
	b.chClose = nil

	conn, err := amqp.Dial(b.url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ dial failed: %w", err)
	}

	if err := b.openChannel(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("RabbitMQ channel failed: %w", err)
	}

	b.conn = conn
	return b.ch, nil
}

// openChannel 開新 channel 並註冊關閉通知
func (b *Broker) openChannel(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	b.ch = ch
	b.chClose = ch.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// channelClosed 檢查 NotifyClose 是否已觸發
func (b *Broker) channelClosed() bool {
	select {
	case <-b.chClose:
		return true
	default:
		return false
	}
}

// DeclareQueue 宣告 durable queue，訊息在 broker 重啟後仍保留
func (b *Broker) DeclareQueue(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, err := b.channel()
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // arguments
	)
	return err
}

// PublishPersistent 以 persistent delivery 發布到指定 queue
func (b *Broker) PublishPersistent(queue string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, err := b.channel()
	if err != nil {
		return err
	}

	return ch.Publish(
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume 以手動確認模式消費指定 queue
func (b *Broker) Consume(queue string) (<-chan amqp.Delivery, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, err := b.channel()
	if err != nil {
		return nil, err
	}

	return ch.Consume(
		queue,
		"",    // consumer tag，留空由系統分配
		false, // autoAck 為 false，使用手動確認
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // arguments
	)
}

// Close 關閉 channel 與連線
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch != nil {
		b.ch.Close()
		b.ch = nil
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}
