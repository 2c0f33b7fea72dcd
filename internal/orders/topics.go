package orders

// All lifecycle events share one topic so consumers see a single ordered
// stream per order.
const TopicOrderEvents = "order.events"

// Partition key = order code, so events for one order keep their emit order.
func PartitionKey(code string) []byte { return []byte(code) }
