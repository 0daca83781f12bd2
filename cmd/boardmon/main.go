package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/nanoboard/pkg/bridge"
	"github.com/robotalks/nanoboard/pkg/comm/mqtt"
	fx "github.com/robotalks/nanoboard/pkg/framework"
)

var (
	mqttURL = "mqtt://localhost:1883/"
	id      = "+"
)

func init() {
	flag.Set("logtostderr", "true")
	if val := os.Getenv("NANOBOARD_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&id, "id", id, "Bridge ID, + for all.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}
	if err = q.Connect(); err != nil {
		glog.Exit(err)
	}
	defer q.Close()

	marshaler := &jsonpb.Marshaler{}
	handler := func(topic string, payload []byte) {
		var s structpb.Struct
		if err := proto.Unmarshal(payload, &s); err != nil {
			glog.Warningf("%s: bad message: %v", topic, err)
			return
		}
		out, err := marshaler.MarshalToString(&s)
		if err != nil {
			glog.Warningf("%s: %v", topic, err)
			return
		}
		glog.Infof("%s: %s", topic, out)
	}
	pub := bridge.NewPublisher(q, id)
	q.Sub(pub.ReadingTopic(), handler)
	q.Sub(pub.BroadcastTopic(), handler)

	<-fx.NewRunner().HandleSignals().Context.Done()
}
