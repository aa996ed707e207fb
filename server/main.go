package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"bikeflow/server/config"
	"bikeflow/utils"
)

const logLevelEnv = "LOG_LEVEL"

// InitLogger Receives the log level to be set in logrus as a string. This method
// parses the string and set the level to the logger. If the level string is not
// valid an error is returned
func InitLogger(logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	customFormatter := &log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   false,
	}
	log.SetFormatter(customFormatter)
	log.SetLevel(level)
	return nil
}

func main() {
	logLevel := os.Getenv(logLevelEnv)
	if logLevel == "" {
		logLevel = "INFO"
	}
	if err := InitLogger(logLevel); err != nil {
		log.Fatalf("%s", err)
		return
	}

	serverConfig, err := config.LoadConfig()
	if err != nil {
		log.Errorf("[server] error loading server config: %s", err.Error())
		return
	}

	if serverConfig.LogLevel != "" && serverConfig.LogLevel != logLevel {
		if err = InitLogger(serverConfig.LogLevel); err != nil {
			log.Errorf("[server] invalid log level %s: %s", serverConfig.LogLevel, err.Error())
			return
		}
	}

	server, err := NewServer(serverConfig)
	if err != nil {
		log.Errorf("[server] error creating server: %s", err.Error())
		return
	}

	defer func(server *Server) {
		if err := server.Kill(); err != nil {
			log.Errorf("[server] error killing server: %s", err.Error())
		}
	}(server)

	err = server.Run(utils.GetSignalChannel())
	if err != nil {
		log.Errorf("[server] error running server: %s", err.Error())
		return
	}

	log.Debug("[server] Finish main.go")
}
