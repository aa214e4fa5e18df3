package kube

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"dashboard-packaging-service/internal/config"
	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
)

var deploymentGVR = schema.GroupVersionResource{
	Group:    "apps",
	Version:  "v1",
	Resource: "deployments",
}

type kubeClient struct {
	client    dynamic.Interface
	enabled   bool
	defaultNS string
}

// NewKubeClient creates a client for launching built images as Kubernetes
// Deployments
func NewKubeClient(cfg *config.KubernetesConfig) (ports.KubeClient, error) {
	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	defaultNS := cfg.DefaultNS
	if defaultNS == "" {
		defaultNS = "dashboards"
	}

	return &kubeClient{
		client:    client,
		enabled:   true,
		defaultNS: defaultNS,
	}, nil
}

func (c *kubeClient) IsAvailable() bool {
	return c.enabled
}

func (c *kubeClient) Deploy(
	ctx context.Context,
	namespace string,
	dep *domain.Deployment,
	build *domain.ImageBuild,
) (*ports.KubeDeployment, error) {
	if namespace == "" {
		namespace = c.defaultNS
	}

	obj := c.buildDeploymentObject(dep, build)

	created, err := c.client.Resource(deploymentGVR).
		Namespace(namespace).
		Create(ctx, obj, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("create k8s deployment: %w", err)
	}

	return &ports.KubeDeployment{
		ExternalID: string(created.GetUID()),
	}, nil
}

func (c *kubeClient) Undeploy(ctx context.Context, namespace, name string) error {
	if namespace == "" {
		namespace = c.defaultNS
	}

	err := c.client.Resource(deploymentGVR).
		Namespace(namespace).
		Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil {
		return fmt.Errorf("delete k8s deployment: %w", err)
	}

	return nil
}

func (c *kubeClient) GetStatus(ctx context.Context, namespace, name string) (*ports.KubeStatus, error) {
	if namespace == "" {
		namespace = c.defaultNS
	}

	obj, err := c.client.Resource(deploymentGVR).
		Namespace(namespace).
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get k8s deployment: %w", err)
	}

	return c.parseStatus(obj), nil
}

// buildDeploymentObject renders the apps/v1 Deployment running the packaged
// dashboard: one replica, the image's port, and liveness/readiness probes on
// the recipe health path.
func (c *kubeClient) buildDeploymentObject(
	dep *domain.Deployment,
	build *domain.ImageBuild,
) *unstructured.Unstructured {
	labels := map[string]interface{}{
		"dashboard-packager/deployment-id": dep.ID.String(),
		"dashboard-packager/build-id":      build.ID.String(),
	}
	for k, v := range dep.Labels {
		labels[k] = v
	}

	selector := map[string]interface{}{
		"app": dep.Name,
	}

	probe := map[string]interface{}{
		"httpGet": map[string]interface{}{
			"path": build.Recipe.HealthPath,
			"port": int64(build.Recipe.Port),
		},
	}

	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "apps/v1",
			"kind":       "Deployment",
			"metadata": map[string]interface{}{
				"name":   dep.Name,
				"labels": labels,
			},
			"spec": map[string]interface{}{
				"replicas": int64(1),
				"selector": map[string]interface{}{
					"matchLabels": selector,
				},
				"template": map[string]interface{}{
					"metadata": map[string]interface{}{
						"labels": map[string]interface{}{
							"app": dep.Name,
						},
					},
					"spec": map[string]interface{}{
						"containers": []interface{}{
							map[string]interface{}{
								"name":  "dashboard",
								"image": build.ImageTag,
								"ports": []interface{}{
									map[string]interface{}{
										"containerPort": int64(build.Recipe.Port),
									},
								},
								"livenessProbe":  probe,
								"readinessProbe": probe,
							},
						},
					},
				},
			},
		},
	}
}

func (c *kubeClient) parseStatus(obj *unstructured.Unstructured) *ports.KubeStatus {
	status := &ports.KubeStatus{}

	statusMap, found, _ := unstructured.NestedMap(obj.Object, "status")
	if !found {
		return status
	}

	status.AvailableReplicas, _, _ = unstructured.NestedInt64(statusMap, "availableReplicas")
	status.Ready = status.AvailableReplicas > 0

	conditions, found, _ := unstructured.NestedSlice(statusMap, "conditions")
	if found {
		for _, cond := range conditions {
			condMap, ok := cond.(map[string]interface{})
			if !ok {
				continue
			}
			condType, _ := condMap["type"].(string)
			condStatus, _ := condMap["status"].(string)

			if condType == "Available" && condStatus == "False" {
				status.Ready = false
				if msg, ok := condMap["message"].(string); ok {
					status.Error = msg
				}
				break
			}
		}
	}

	return status
}

// Ensure interface compliance
var _ ports.KubeClient = (*kubeClient)(nil)
